package engine

import (
	"context"

	"oiobot/internal/broker"
	"oiobot/internal/metrics"
	"oiobot/internal/models"
	"oiobot/internal/pattern"
)

// openCycle ставит пару встречных отложенных ордеров по паттерну.
// Если вторая постановка отклонена, первая компенсируется отменой
// и цикл не активируется.
func (e *Engine) openCycle(ctx context.Context, p *pattern.OIOPattern) {
	digits := e.rules.Digits
	dist := e.tpDistance()

	buyPrice, sellPrice := CalcEntryPrices(p.High, p.Low, e.rules.TickSize, digits)
	buySL, sellSL := p.Low, p.High
	buyTP := CalcTakeProfit(buyPrice, dist, models.DirectionLong, digits)
	sellTP := CalcTakeProfit(sellPrice, dist, models.DirectionShort, digits)

	if !ValidStops(models.DirectionLong, buyPrice, buySL, buyTP) ||
		!ValidStops(models.DirectionShort, sellPrice, sellSL, sellTP) {
		e.logEntry().WithFields(map[string]interface{}{
			"pattern_id": p.ID,
			"buy_price":  buyPrice,
			"sell_price": sellPrice,
		}).Warn("Некорректный порядок стопов, паттерн отброшен.")
		return
	}
	e.checkStopDistance("buy", buyPrice, buySL, buyTP)
	e.checkStopDistance("sell", sellPrice, sellSL, sellTP)

	buyRef, err := e.gateway.PlacePendingOrder(ctx, broker.PendingOrderRequest{
		Symbol:     e.cfg.Bot.Symbol,
		Direction:  models.DirectionLong,
		Price:      buyPrice,
		Qty:        e.cfg.Bot.OrderQty,
		StopLoss:   buySL,
		TakeProfit: buyTP,
		LinkID:     e.linkID(p.ID, "buy"),
		Tag:        e.cfg.Bot.OrderTag,
	})
	if err != nil {
		metrics.OrdersRejected.WithLabelValues("entry", broker.RejectClass(err)).Inc()
		e.logEntry().WithError(err).WithField("class", broker.RejectClass(err)).Warn("Не удалось поставить входной buy, паттерн отброшен.")
		return
	}
	metrics.OrdersPlaced.WithLabelValues("entry").Inc()

	sellRef, err := e.gateway.PlacePendingOrder(ctx, broker.PendingOrderRequest{
		Symbol:     e.cfg.Bot.Symbol,
		Direction:  models.DirectionShort,
		Price:      sellPrice,
		Qty:        e.cfg.Bot.OrderQty,
		StopLoss:   sellSL,
		TakeProfit: sellTP,
		LinkID:     e.linkID(p.ID, "sell"),
		Tag:        e.cfg.Bot.OrderTag,
	})
	if err != nil {
		metrics.OrdersRejected.WithLabelValues("entry", broker.RejectClass(err)).Inc()
		e.logEntry().WithError(err).WithField("class", broker.RejectClass(err)).Warn("Не удалось поставить входной sell, компенсация buy.")

		if cErr := e.gateway.CancelOrder(ctx, e.cfg.Bot.Symbol, buyRef); cErr != nil && !broker.IsMootReject(cErr) {
			e.logEntry().WithError(cErr).WithField("ref", buyRef).Error("Компенсация не удалась, входной buy остался у брокера.")
		} else {
			e.logEntry().WithField("ref", buyRef).Info("Входной buy отменён после отказа по sell.")
		}
		return
	}
	metrics.OrdersPlaced.WithLabelValues("entry").Inc()

	e.cycle = Cycle{
		ID:        p.ID,
		Active:    true,
		EntryHigh: p.High,
		EntryLow:  p.Low,
		Midpoint:  p.Midpoint,
		BuyRef:    buyRef,
		SellRef:   sellRef,
	}

	metrics.CyclesOpened.Inc()
	metrics.CycleActive.Set(1)

	e.annotator.Draw(p.ID, p.StartTime, p.EndTime, p.High, p.Low)

	e.logEntry().WithFields(map[string]interface{}{
		"buy_ref":    buyRef,
		"sell_ref":   sellRef,
		"buy_price":  buyPrice,
		"sell_price": sellPrice,
		"midpoint":   p.Midpoint,
	}).Info("Цикл открыт, ожидание исполнения входных ордеров.")
}

func (e *Engine) checkStopDistance(label string, entry, stopLoss, takeProfit float64) {
	minDist := e.rules.MinStopDistance
	if minDist <= 0 {
		return
	}
	slDist := entry - stopLoss
	if slDist < 0 {
		slDist = -slDist
	}
	tpDist := takeProfit - entry
	if tpDist < 0 {
		tpDist = -tpDist
	}
	if slDist < minDist || tpDist < minDist {
		e.logEntry().WithFields(map[string]interface{}{
			"order":             label,
			"sl_distance":       slDist,
			"tp_distance":       tpDist,
			"min_stop_distance": minDist,
		}).Warn("Стопы ближе минимальной дистанции брокера, возможен отказ.")
	}
}
