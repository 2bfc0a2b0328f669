package engine

import (
	"context"
	"time"

	"oiobot/internal/broker"
	"oiobot/internal/metrics"
	"oiobot/internal/models"
	"oiobot/internal/pattern"
)

// run — единственный поток управления: опрос баров и уведомления моста
// обрабатываются по одному, до конца, поэтому Cycle не требует блокировок.
func (e *Engine) run(ctx context.Context, events <-chan broker.Event) {
	poll := time.NewTicker(e.cfg.Bot.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			e.onBarPoll(ctx)
		case event, ok := <-events:
			if !ok {
				e.logEntry().Warn("Канал событий моста закрыт.")
				return
			}
			switch event.Type {
			case broker.EventTypeTrade:
				e.onTradeEvent(ctx)
			case broker.EventTypeReconnect:
				e.logEntry().Info("Получен сигнал реконнекта WS, сверка тикетов.")
				e.onTradeEvent(ctx)
			case broker.EventTypeQuote:
				if event.Quote != nil {
					e.onQuote(*event.Quote)
				}
			}
		}
	}
}

func (e *Engine) onBarPoll(ctx context.Context) {
	bars, err := e.gateway.RecentClosedBars(ctx, e.cfg.Bot.Symbol, e.cfg.Bot.Timeframe, 3)
	if err != nil {
		e.logEntry().WithError(err).Warn("Не удалось получить бары.")
		return
	}
	if len(bars) < 3 {
		return
	}

	last := bars[len(bars)-3:]
	if !last[2].OpenTime.After(e.lastBarTime) {
		return
	}
	e.lastBarTime = last[2].OpenTime

	if p := e.detector.Detect(last); p != nil {
		metrics.PatternsDetected.Inc()
		e.logEntry().WithFields(map[string]interface{}{
			"pattern_id": p.ID,
			"high":       p.High,
			"low":        p.Low,
			"midpoint":   p.Midpoint,
		}).Info("Обнаружен OIO паттерн.")
		e.onPattern(ctx, p)
	}

	e.checkTermination(ctx)
}

func (e *Engine) onPattern(ctx context.Context, p *pattern.OIOPattern) {
	if e.cycle.Active {
		if e.cycle.ID == p.ID {
			e.logEntry().Debug("Паттерн уже принят этим циклом, пропуск.")
		} else {
			e.logEntry().WithField("pattern_id", p.ID).Debug("Цикл ещё активен, новый паттерн игнорируется.")
		}
		return
	}
	e.openCycle(ctx, p)
}

func (e *Engine) onTradeEvent(ctx context.Context) {
	if e.cycle.Active {
		if e.cycle.FirstFilledRef == "" {
			e.checkFirstFill(ctx)
		}
		if e.cycle.FirstFilledRef != "" && e.cycle.ChaseRef != "" && !e.cycle.TakeProfitsAdjusted {
			e.adjustTakeProfits(ctx)
		}
	}
	e.checkTermination(ctx)
}

func (e *Engine) onQuote(quote models.Quote) {
	e.lastQuote = quote

	now := time.Now()
	if now.Sub(e.lastQuoteLog) < 1*time.Second {
		return
	}
	e.lastQuoteLog = now

	e.logEntry().WithFields(map[string]interface{}{
		"bid": quote.Bid,
		"ask": quote.Ask,
		"ts":  quote.Timestamp.UnixMilli(),
	}).Debug("quote")
}

// checkFirstFill смотрит, стала ли одна из входных заявок позицией.
// Победитель фиксируется один раз, парный ордер отменяется и очищается.
func (e *Engine) checkFirstFill(ctx context.Context) {
	if e.cycle.BuyRef == "" && e.cycle.SellRef == "" {
		return
	}

	var winner models.Resolution
	var sibling string
	var direction models.Direction

	if e.cycle.BuyRef != "" {
		res, ok := e.resolveRef(ctx, e.cycle.BuyRef)
		if !ok {
			return
		}
		if res.Status == models.RefStatusPosition {
			winner, sibling, direction = res, e.cycle.SellRef, models.DirectionLong
		}
	}
	if winner.Ref == "" && e.cycle.SellRef != "" {
		res, ok := e.resolveRef(ctx, e.cycle.SellRef)
		if !ok {
			return
		}
		if res.Status == models.RefStatusPosition {
			winner, sibling, direction = res, e.cycle.BuyRef, models.DirectionShort
		}
	}
	if winner.Ref == "" {
		return
	}

	e.cycle.FirstFilledRef = winner.Ref
	e.cycle.FirstFilledDirection = direction
	e.cycle.BuyRef = ""
	e.cycle.SellRef = ""

	e.logEntry().WithFields(map[string]interface{}{
		"ref":       winner.Ref,
		"direction": direction,
	}).Info("Первая нога исполнена.")

	if sibling != "" {
		if err := e.gateway.CancelOrder(ctx, e.cfg.Bot.Symbol, sibling); err != nil && !broker.IsMootReject(err) {
			e.logEntry().WithError(err).WithField("ref", sibling).Warn("Не удалось отменить парный входной ордер.")
		} else {
			e.logEntry().WithField("ref", sibling).Info("Парный входной ордер отменён.")
		}
	}

	e.placeChase(ctx, winner.Position)
}

// checkTermination перечитывает у брокера каждый отслеживаемый тикет,
// кэшированные флаги не используются. Сбрасывает цикл, когда не осталось
// ни одного живого ордера или позиции.
func (e *Engine) checkTermination(ctx context.Context) {
	if !e.cycle.Active {
		return
	}

	for _, ref := range e.cycle.trackedRefs() {
		res, err := e.gateway.Resolve(ctx, e.cfg.Bot.Symbol, ref)
		if err != nil {
			e.logEntry().WithError(err).WithField("ref", ref).Warn("Не удалось проверить тикет, завершение отложено.")
			return
		}
		if !e.owns(res) {
			continue
		}
		if res.Status != models.RefStatusGone {
			return
		}
	}

	e.resetCycle()
}

func (e *Engine) resetCycle() {
	id := e.cycle.ID
	e.cycle = Cycle{}

	metrics.CycleActive.Set(0)
	metrics.CyclesClosed.Inc()

	e.annotator.Remove(id)
	e.log.WithComponent("engine").WithField("symbol", e.cfg.Bot.Symbol).WithField("cycle_id", id).Info("Цикл завершён, возврат в ожидание паттерна.")
}
