package engine

import (
	"context"

	"oiobot/internal/metrics"
	"oiobot/internal/models"
)

type restoredRef struct {
	role string
	res  models.Resolution
}

// restoreCycle восстанавливает цикл после рестарта по открытым тикетам
// с нашим тегом. Если подходящих тикетов нет, машина стартует в Idle.
func (e *Engine) restoreCycle(ctx context.Context) {
	refs, err := e.gateway.OpenRefs(ctx, e.cfg.Bot.Symbol, e.cfg.Bot.OrderTag)
	if err != nil {
		e.logEntry().WithError(err).Warn("Восстановление пропущено: не удалось получить открытые тикеты.")
		return
	}

	cycles := map[int64][]restoredRef{}
	for _, res := range refs {
		cycleID, role, ok := e.parseLinkID(res.LinkID)
		if !ok {
			continue
		}
		cycles[cycleID] = append(cycles[cycleID], restoredRef{role: role, res: res})
	}

	if len(cycles) == 0 {
		e.logEntry().Info("Открытых тикетов бота нет, старт в ожидании паттерна.")
		return
	}

	var cycleID int64
	for id := range cycles {
		if id > cycleID {
			cycleID = id
		}
	}
	if len(cycles) > 1 {
		e.logEntry().WithFields(map[string]interface{}{
			"cycles":   len(cycles),
			"restored": cycleID,
		}).Warn("Найдены тикеты нескольких циклов, восстанавливается только новейший.")
	}

	digits := e.rules.Digits
	tick := e.rules.TickSize
	c := Cycle{ID: cycleID, Active: true}
	var firstPos, chasePos *models.Position

	for _, item := range cycles[cycleID] {
		res := item.res
		switch item.role {
		case "buy":
			if res.Status == models.RefStatusPending && res.Pending != nil {
				c.BuyRef = res.Ref
				c.EntryHigh = models.NormalizePrice(res.Pending.Price-tick, digits)
				c.EntryLow = res.Pending.StopLoss
			}
			if res.Status == models.RefStatusPosition && c.FirstFilledRef == "" {
				c.FirstFilledRef = res.Ref
				c.FirstFilledDirection = models.DirectionLong
				firstPos = res.Position
			}
		case "sell":
			if res.Status == models.RefStatusPending && res.Pending != nil {
				c.SellRef = res.Ref
				c.EntryLow = models.NormalizePrice(res.Pending.Price+tick, digits)
				c.EntryHigh = res.Pending.StopLoss
			}
			if res.Status == models.RefStatusPosition && c.FirstFilledRef == "" {
				c.FirstFilledRef = res.Ref
				c.FirstFilledDirection = models.DirectionShort
				firstPos = res.Position
			}
		case "chase":
			c.ChaseRef = res.Ref
			if res.Status == models.RefStatusPending && res.Pending != nil {
				c.Midpoint = res.Pending.Price
			}
			if res.Status == models.RefStatusPosition && res.Position != nil {
				c.Midpoint = res.Position.EntryPrice
				chasePos = res.Position
			}
		}

		e.log.WithComponent("engine").WithField("symbol", e.cfg.Bot.Symbol).WithFields(map[string]interface{}{
			"cycle_id": cycleID,
			"ref":      res.Ref,
			"link_id":  res.LinkID,
			"role":     item.role,
			"status":   res.Status,
		}).Debug("Тикет восстановлен.")
	}

	if c.Midpoint == 0 && c.EntryHigh > 0 && c.EntryLow > 0 {
		c.Midpoint = models.NormalizePrice((c.EntryHigh+c.EntryLow)/2, digits)
	}
	if firstPos != nil && chasePos != nil &&
		firstPos.TakeProfit != 0 && firstPos.TakeProfit == chasePos.TakeProfit {
		c.TakeProfitsAdjusted = true
	}

	e.cycle = c
	metrics.CycleActive.Set(1)

	e.logEntry().WithFields(map[string]interface{}{
		"buy_ref":     c.BuyRef,
		"sell_ref":    c.SellRef,
		"first_ref":   c.FirstFilledRef,
		"chase_ref":   c.ChaseRef,
		"tp_adjusted": c.TakeProfitsAdjusted,
		"entry_high":  c.EntryHigh,
		"entry_low":   c.EntryLow,
		"midpoint":    c.Midpoint,
	}).Info("Цикл восстановлен после рестарта.")
}
