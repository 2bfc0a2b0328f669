package engine

import (
	"context"
	"fmt"
	"time"

	"oiobot/internal/broker"
	"oiobot/internal/chart"
	"oiobot/internal/config"
	"oiobot/internal/logger"
	"oiobot/internal/models"
	"oiobot/internal/pattern"
)

type Engine struct {
	cfg       *config.Config
	gateway   broker.Gateway
	annotator chart.Annotator
	log       *logger.Logger

	rules    broker.InstrumentRules
	detector *pattern.Detector

	cycle        Cycle
	lastBarTime  time.Time
	lastQuote    models.Quote
	lastQuoteLog time.Time
}

func New(cfg *config.Config, gateway broker.Gateway, annotator chart.Annotator, log *logger.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		gateway:   gateway,
		annotator: annotator,
		log:       log,
	}
}

func (e *Engine) Start(ctx context.Context) error {
	rules, err := e.withRetryRules(ctx, e.cfg.Bot.Symbol)
	if err != nil {
		return err
	}
	e.rules = rules
	e.logEntry().WithFields(map[string]interface{}{
		"digits":            rules.Digits,
		"tick_size":         rules.TickSize,
		"min_stop_distance": rules.MinStopDistance,
		"min_qty":           rules.MinQty,
	}).Info("Получены ограничения инструмента.")

	if rules.TickSize <= 0 {
		return fmt.Errorf("Мост вернул нулевой шаг цены для %s.", e.cfg.Bot.Symbol)
	}

	// Минимальная дистанция стопов брокера — только предупреждение,
	// нарушения всплывут как отказы брокера.
	if rules.MinStopDistance > 0 && e.tpDistance() < rules.MinStopDistance {
		e.logEntry().WithFields(map[string]interface{}{
			"tp_distance":       e.tpDistance(),
			"min_stop_distance": rules.MinStopDistance,
		}).Warn("Дистанция TP меньше минимальной дистанции брокера.")
	}

	e.detector = pattern.NewDetector(rules.Digits, e.cfg.TimeframeDuration())

	if e.cfg.Runtime.RestoreOnStart {
		e.restoreCycle(ctx)
	}

	events, err := e.gateway.Subscribe(ctx, e.cfg.Bot.Symbol)
	if err != nil {
		return err
	}

	e.logEntry().WithFields(map[string]interface{}{
		"timeframe":     e.cfg.Bot.Timeframe,
		"poll_interval": e.cfg.Bot.PollInterval.String(),
	}).Info("Запуск цикла событий.")

	e.run(ctx, events)
	return nil
}

func (e *Engine) tpDistance() float64 {
	return float64(e.cfg.Bot.TPDistanceTicks) * e.rules.TickSize
}
