package pattern

import (
	"time"

	"oiobot/internal/models"
)

// OIOPattern — тройка баров "внешний-внутренний-внешний": первый и третий бар
// целиком накрывают максимум и минимум среднего.
type OIOPattern struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	High      float64
	Low       float64
	Midpoint  float64
}

type Detector struct {
	digits   int
	interval time.Duration
}

func NewDetector(digits int, interval time.Duration) *Detector {
	return &Detector{
		digits:   digits,
		interval: interval,
	}
}

// Detect принимает три последних закрытых бара (от старшего к младшему)
// и возвращает паттерн либо nil. Сравнения включают границы: равный
// максимум или минимум соседа тоже засчитывается.
func (d *Detector) Detect(bars []models.Bar) *OIOPattern {
	if len(bars) != 3 {
		return nil
	}
	b1, b2, b3 := bars[0], bars[1], bars[2]

	outsideHighs := b1.High >= b2.High && b3.High >= b2.High
	outsideLows := b1.Low <= b2.Low && b3.Low <= b2.Low
	if !outsideHighs || !outsideLows {
		return nil
	}

	high := b1.High
	if b3.High > high {
		high = b3.High
	}
	low := b1.Low
	if b3.Low < low {
		low = b3.Low
	}

	return &OIOPattern{
		ID:        b3.OpenTime.Unix(),
		StartTime: b1.OpenTime,
		EndTime:   b3.OpenTime.Add(d.interval),
		High:      high,
		Low:       low,
		Midpoint:  models.NormalizePrice((high+low)/2, d.digits),
	}
}
