package models

import "time"

type Direction string
type RefStatus string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"

	RefStatusPending  RefStatus = "PENDING"
	RefStatusPosition RefStatus = "POSITION"
	RefStatusGone     RefStatus = "GONE"
)

type Bar struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
}

type Quote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Timestamp time.Time `json:"timestamp"`
}

type PendingOrder struct {
	Ref        string    `json:"ref"`
	LinkID     string    `json:"link_id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Price      float64   `json:"price"`
	Qty        float64   `json:"qty"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Tag        string    `json:"tag"`
	CreateTime time.Time `json:"create_time"`
}

type Position struct {
	Ref        string    `json:"ref"`
	LinkID     string    `json:"link_id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	Volume     float64   `json:"volume"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Tag        string    `json:"tag"`
	OpenTime   time.Time `json:"open_time"`
}

// Resolution — текущее брокерское состояние отслеживаемой ссылки.
// Один и тот же тикет сначала означает отложенный ордер, потом позицию.
type Resolution struct {
	Ref      string        `json:"ref"`
	Status   RefStatus     `json:"status"`
	Tag      string        `json:"tag"`
	LinkID   string        `json:"link_id"`
	Pending  *PendingOrder `json:"pending,omitempty"`
	Position *Position     `json:"position,omitempty"`
}
