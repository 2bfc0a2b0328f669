package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"oiobot/internal/broker"
	"oiobot/internal/models"
)

type wsMessage struct {
	Topic string          `json:"topic"`
	TS    int64           `json:"ts"`
	Data  json.RawMessage `json:"data"`
}

type wsOp struct {
	Op    string   `json:"op"`
	ReqID string   `json:"req_id"`
	Args  []string `json:"args"`
}

// Subscribe подключает WS моста, подписывается на торговые события и
// котировки и возвращает канал событий. Переподключение с ресабскрайбом
// выполняется внутри.
func (c *Client) Subscribe(ctx context.Context, symbol string) (<-chan broker.Event, error) {
	c.symbol = symbol
	c.topics = []string{"trade." + symbol, "quote." + symbol}

	c.logEntry().WithField("url", c.wsURL).Info("Подключение к WS моста.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Не удалось подключиться к WS: %w", err)
	}
	c.conn = conn
	c.conn.SetReadLimit(2 << 20)

	if c.apiKey != "" && c.secret != "" {
		if err := c.authenticate(); err != nil {
			return nil, err
		}
	}
	if err := c.subscribeTopics(); err != nil {
		return nil, fmt.Errorf("Не удалось подписаться на WS: %w", err)
	}

	c.logEntry().Info("WS соединение установлено.")

	go c.readLoop()

	return c.events, nil
}

func (c *Client) authenticate() error {
	expires := time.Now().UnixMilli() + 5_000
	payload := fmt.Sprintf("GET/realtime%d", expires)

	msg := wsOp{
		Op:    "auth",
		ReqID: uuid.NewString(),
		Args:  []string{c.apiKey, strconv.FormatInt(expires, 10), sign(c.secret, payload)},
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("Не удалось авторизоваться: %w", err)
	}
	return nil
}

func (c *Client) subscribeTopics() error {
	msg := wsOp{
		Op:    "subscribe",
		ReqID: uuid.NewString(),
		Args:  c.topics,
	}
	return c.conn.WriteJSON(msg)
}

func (c *Client) readLoop() {
	c.logEntry().Debug("readLoop запущен.")

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logEntry().WithError(err).Warn("Ошибка чтения WS.")

			if !c.reconnect() {
				return
			}
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logEntry().WithError(err).Warn("Не удалось разобрать WS сообщение.")
			continue
		}

		switch {
		case msg.Topic == "trade."+c.symbol:
			c.events <- broker.Event{Type: broker.EventTypeTrade}
		case msg.Topic == "quote."+c.symbol:
			c.handleQuote(msg)
		default:
			continue
		}
	}
}

func (c *Client) handleQuote(msg wsMessage) {
	var data struct {
		Symbol string `json:"symbol"`
		Bid    string `json:"bid"`
		Ask    string `json:"ask"`
		TS     int64  `json:"ts"`
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.logEntry().WithError(err).Warn("Не удалось разобрать quote.")
		return
	}

	bid, _ := strconv.ParseFloat(data.Bid, 64)
	ask, _ := strconv.ParseFloat(data.Ask, 64)
	ts := data.TS
	if ts == 0 {
		ts = msg.TS
	}

	c.events <- broker.Event{
		Type: broker.EventTypeQuote,
		Quote: &models.Quote{
			Symbol:    data.Symbol,
			Bid:       bid,
			Ask:       ask,
			Timestamp: time.UnixMilli(ts),
		},
	}
}

func (c *Client) reconnect() bool {
	backoff := c.reconnectMin

	for {
		select {
		case <-c.stopCh:
			return false
		default:
		}

		c.logEntry().Info("Попытка переподключения к WS.")

		time.Sleep(backoff)

		conn, _, err := websocket.DefaultDialer.Dial(c.wsURL, nil)
		if err != nil {
			c.logEntry().WithError(err).Warn("Не удалось переподключиться к WS.")
			backoff = c.nextBackoff(backoff)
			continue
		}

		if c.conn != nil {
			_ = c.conn.Close()
		}

		c.conn = conn
		c.conn.SetReadLimit(2 << 20)

		if c.apiKey != "" && c.secret != "" {
			if err := c.authenticate(); err != nil {
				c.logEntry().WithError(err).Warn("Не удалось повторно авторизоваться в WS.")
				backoff = c.nextBackoff(backoff)
				continue
			}
		}

		if err := c.subscribeTopics(); err != nil {
			c.logEntry().WithError(err).Warn("Не удалось повторно подписаться на WS.")
			backoff = c.nextBackoff(backoff)
			continue
		}

		c.events <- broker.Event{Type: broker.EventTypeReconnect}
		c.logEntry().Info("WS переподключён и подписки восстановлены.")
		return true
	}
}

func (c *Client) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > c.reconnectMax {
		return c.reconnectMax
	}
	return next
}
