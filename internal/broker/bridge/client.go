package bridge

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"oiobot/internal/broker"
	"oiobot/internal/logger"
)

// Client — REST+WS клиент брокерского моста (sidecar перед терминалом).
type Client struct {
	baseURL string
	wsURL   string
	apiKey  string
	secret  string

	httpClient *http.Client
	log        *logger.Logger

	conn         *websocket.Conn
	events       chan broker.Event
	stopCh       chan struct{}
	stopOnce     sync.Once
	symbol       string
	topics       []string
	reconnectMin time.Duration
	reconnectMax time.Duration
}

func New(baseURL, wsURL, apiKey, secret string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		wsURL:   wsURL,
		apiKey:  apiKey,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log:          log,
		events:       make(chan broker.Event, 100),
		stopCh:       make(chan struct{}),
		reconnectMin: 1 * time.Second,
		reconnectMax: 30 * time.Second,
	}
}

func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) logEntry() *logrus.Entry {
	entry := c.log.WithComponent("bridge")
	if c.symbol != "" {
		entry = entry.WithField("symbol", c.symbol)
	}
	return entry
}
