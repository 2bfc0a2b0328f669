package models

import "math"

// NormalizePrice округляет цену до точности инструмента (digits знаков).
func NormalizePrice(price float64, digits int) float64 {
	if digits < 0 {
		return price
	}
	factor := math.Pow(10, float64(digits))
	return math.Round(price*factor) / factor
}

// TickFromDigits — минимальный шаг цены для заданной точности.
func TickFromDigits(digits int) float64 {
	if digits <= 0 {
		return 1
	}
	return math.Pow(10, -float64(digits))
}
