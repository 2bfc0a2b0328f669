package engine

import (
	"context"

	"oiobot/internal/broker"
	"oiobot/internal/metrics"
	"oiobot/internal/models"
)

// placeChase ставит догоняющий ордер того же направления на середине
// паттерна. Вызывается ровно один раз, сразу после первой ноги: при
// отказе первая нога торгует самостоятельно, автоповтора нет.
func (e *Engine) placeChase(ctx context.Context, first *models.Position) {
	if first == nil {
		return
	}

	digits := e.rules.Digits
	direction := e.cycle.FirstFilledDirection
	price := e.cycle.Midpoint
	stopLoss := first.StopLoss
	takeProfit := CalcTakeProfit(price, e.tpDistance(), direction, digits)

	if !ValidStops(direction, price, stopLoss, takeProfit) {
		e.logEntry().WithFields(map[string]interface{}{
			"price":       price,
			"stop_loss":   stopLoss,
			"take_profit": takeProfit,
		}).Warn("Некорректный порядок стопов догоняющего ордера, постановка отменена.")
		return
	}
	e.checkStopDistance("chase", price, stopLoss, takeProfit)

	ref, err := e.gateway.PlacePendingOrder(ctx, broker.PendingOrderRequest{
		Symbol:     e.cfg.Bot.Symbol,
		Direction:  direction,
		Price:      price,
		Qty:        e.cfg.Bot.OrderQty,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		LinkID:     e.linkID(e.cycle.ID, "chase"),
		Tag:        e.cfg.Bot.OrderTag,
	})
	if err != nil {
		metrics.OrdersRejected.WithLabelValues("chase", broker.RejectClass(err)).Inc()
		e.logEntry().WithError(err).WithField("class", broker.RejectClass(err)).Warn("Не удалось поставить догоняющий ордер, первая нога торгует самостоятельно.")
		return
	}
	metrics.OrdersPlaced.WithLabelValues("chase").Inc()

	e.cycle.ChaseRef = ref

	e.logEntry().WithFields(map[string]interface{}{
		"ref":         ref,
		"price":       price,
		"stop_loss":   stopLoss,
		"take_profit": takeProfit,
	}).Info("Догоняющий ордер поставлен на середине паттерна.")
}

// adjustTakeProfits пересчитывает общий TP по средневзвешенному входу
// обеих ног и модифицирует обе позиции. Флаг ставится только после двух
// успешных модификаций; до этого попытка повторяется на каждом событии.
func (e *Engine) adjustTakeProfits(ctx context.Context) {
	firstRes, ok := e.resolveRef(ctx, e.cycle.FirstFilledRef)
	if !ok {
		return
	}
	chaseRes, ok := e.resolveRef(ctx, e.cycle.ChaseRef)
	if !ok {
		return
	}
	if firstRes.Status != models.RefStatusPosition || chaseRes.Status != models.RefStatusPosition {
		return
	}

	first := firstRes.Position
	chase := chaseRes.Position

	avg := CalcAvgEntry(first.EntryPrice, first.Volume, chase.EntryPrice, chase.Volume)
	takeProfit := CalcTakeProfit(avg, e.tpDistance(), e.cycle.FirstFilledDirection, e.rules.Digits)

	if err := e.gateway.ModifyStops(ctx, e.cfg.Bot.Symbol, first.Ref, first.StopLoss, takeProfit); err != nil && !broker.IsNoChange(err) {
		e.logEntry().WithError(err).WithField("ref", first.Ref).Warn("Не удалось обновить TP первой ноги.")
		return
	}
	if err := e.gateway.ModifyStops(ctx, e.cfg.Bot.Symbol, chase.Ref, chase.StopLoss, takeProfit); err != nil && !broker.IsNoChange(err) {
		e.logEntry().WithError(err).WithField("ref", chase.Ref).Warn("Не удалось обновить TP догоняющей ноги, попытка повторится.")
		return
	}

	e.cycle.TakeProfitsAdjusted = true
	metrics.TakeProfitAdjustments.Inc()

	e.logEntry().WithFields(map[string]interface{}{
		"avg_entry":   avg,
		"take_profit": takeProfit,
		"first_ref":   first.Ref,
		"chase_ref":   chase.Ref,
	}).Info("Общий TP установлен на обе ноги.")
}
