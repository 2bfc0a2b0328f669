package engine

import (
	"oiobot/internal/models"
)

// CalcEntryPrices — цены входных отложенных ордеров: buy на тик выше
// максимума паттерна, sell на тик ниже минимума.
func CalcEntryPrices(high, low, tick float64, digits int) (float64, float64) {
	buy := models.NormalizePrice(high+tick, digits)
	sell := models.NormalizePrice(low-tick, digits)
	return buy, sell
}

// CalcTakeProfit — TP на заданной дистанции от цены, знак по направлению.
func CalcTakeProfit(price, distance float64, direction models.Direction, digits int) float64 {
	if direction == models.DirectionLong {
		return models.NormalizePrice(price+distance, digits)
	}
	return models.NormalizePrice(price-distance, digits)
}

// CalcAvgEntry — средневзвешенная цена входа по двум ногам.
func CalcAvgEntry(p1, v1, p2, v2 float64) float64 {
	if v1+v2 == 0 {
		return 0
	}
	return (p1*v1 + p2*v2) / (v1 + v2)
}

// ValidStops — строгий порядок цен: для покупки SL < цена < TP,
// для продажи зеркально. Нарушение означает, что ордер нельзя отправлять.
func ValidStops(direction models.Direction, entry, stopLoss, takeProfit float64) bool {
	if direction == models.DirectionLong {
		return stopLoss < entry && takeProfit > entry
	}
	return stopLoss > entry && takeProfit < entry
}
