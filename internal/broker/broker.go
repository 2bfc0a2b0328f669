package broker

import (
	"context"

	"oiobot/internal/models"
)

type EventType string

const (
	EventTypeTrade     EventType = "Trade"
	EventTypeQuote     EventType = "Quote"
	EventTypeReconnect EventType = "Reconnect"
)

// Event — уведомление моста: торговое событие, котировка или реконнект.
// Торговое событие не несёт деталей, машина цикла сама перечитывает тикеты.
type Event struct {
	Type  EventType
	Quote *models.Quote
}

type InstrumentRules struct {
	Digits          int
	TickSize        float64
	MinStopDistance float64
	MinQty          float64
	QtyStep         float64
}

type PendingOrderRequest struct {
	Symbol     string
	Direction  models.Direction
	Price      float64
	Qty        float64
	StopLoss   float64
	TakeProfit float64
	LinkID     string
	Tag        string
}

type Gateway interface {
	InstrumentRules(ctx context.Context, symbol string) (InstrumentRules, error)
	RecentClosedBars(ctx context.Context, symbol, timeframe string, n int) ([]models.Bar, error)
	LatestQuote(ctx context.Context, symbol string) (models.Quote, error)
	PlacePendingOrder(ctx context.Context, req PendingOrderRequest) (string, error)
	CancelOrder(ctx context.Context, symbol, ref string) error
	ModifyStops(ctx context.Context, symbol, ref string, stopLoss, takeProfit float64) error
	Resolve(ctx context.Context, symbol, ref string) (models.Resolution, error)
	OpenRefs(ctx context.Context, symbol, tag string) ([]models.Resolution, error)
	Subscribe(ctx context.Context, symbol string) (<-chan Event, error)
}
