package pattern

import (
	"testing"
	"time"

	"oiobot/internal/models"
)

func testBars(h1, l1, h2, l2, h3, l3 float64) []models.Bar {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return []models.Bar{
		{OpenTime: start, High: h1, Low: l1},
		{OpenTime: start.Add(15 * time.Minute), High: h2, Low: l2},
		{OpenTime: start.Add(30 * time.Minute), High: h3, Low: l3},
	}
}

func TestDetectOutsideInsideOutside(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	p := d.Detect(testBars(10, 8, 9, 8.5, 10, 8))
	if p == nil {
		t.Fatal("expected pattern, got nil")
	}
	if p.High != 10 {
		t.Errorf("expected high 10, got %v", p.High)
	}
	if p.Low != 8 {
		t.Errorf("expected low 8, got %v", p.Low)
	}
	if p.Midpoint != 9.00000 {
		t.Errorf("expected midpoint 9.00000, got %v", p.Midpoint)
	}
}

func TestDetectUsesExtremesOfOuterBars(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	p := d.Detect(testBars(10, 8.2, 9, 8.5, 10.4, 8))
	if p == nil {
		t.Fatal("expected pattern, got nil")
	}
	if p.High != 10.4 {
		t.Errorf("expected high from third bar 10.4, got %v", p.High)
	}
	if p.Low != 8 {
		t.Errorf("expected low from third bar 8, got %v", p.Low)
	}
}

func TestDetectBoundaryInclusive(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	// Равные максимумы и минимумы соседей тоже засчитываются.
	p := d.Detect(testBars(10, 8, 10, 8, 10, 8))
	if p == nil {
		t.Fatal("expected pattern on equal extremes, got nil")
	}
}

func TestDetectRejectsBrokenConditions(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	cases := []struct {
		name string
		bars []models.Bar
	}{
		{"first high below middle", testBars(8.9, 8, 9, 8.5, 10, 8)},
		{"third high below middle", testBars(10, 8, 9, 8.5, 8.9, 8)},
		{"first low above middle", testBars(10, 8.6, 9, 8.5, 10, 8)},
		{"third low above middle", testBars(10, 8, 9, 8.5, 10, 8.6)},
	}

	for _, tc := range cases {
		if p := d.Detect(tc.bars); p != nil {
			t.Errorf("%s: expected nil, got pattern %+v", tc.name, p)
		}
	}
}

func TestDetectMidpointRounding(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	p := d.Detect(testBars(1.00003, 1.00000, 1.00002, 1.00001, 1.00003, 1.00000))
	if p == nil {
		t.Fatal("expected pattern, got nil")
	}
	if p.Midpoint != 1.00002 {
		t.Errorf("expected midpoint 1.00002, got %v", p.Midpoint)
	}
}

func TestDetectIDAndTimes(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	bars := testBars(10, 8, 9, 8.5, 10, 8)
	p := d.Detect(bars)
	if p == nil {
		t.Fatal("expected pattern, got nil")
	}
	if p.ID != bars[2].OpenTime.Unix() {
		t.Errorf("expected id %d, got %d", bars[2].OpenTime.Unix(), p.ID)
	}
	if !p.StartTime.Equal(bars[0].OpenTime) {
		t.Errorf("expected start %v, got %v", bars[0].OpenTime, p.StartTime)
	}
	if !p.EndTime.Equal(bars[2].OpenTime.Add(15 * time.Minute)) {
		t.Errorf("expected end %v, got %v", bars[2].OpenTime.Add(15*time.Minute), p.EndTime)
	}
}

func TestDetectWrongBarCount(t *testing.T) {
	d := NewDetector(5, 15*time.Minute)

	if p := d.Detect(testBars(10, 8, 9, 8.5, 10, 8)[:2]); p != nil {
		t.Errorf("expected nil on two bars, got %+v", p)
	}
}
