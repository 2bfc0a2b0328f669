package bridge

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Аннотации графика: fire-and-forget, результат в логику не возвращается.

func (c *Client) Draw(id int64, start, end time.Time, high, low float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body := map[string]any{
		"symbol": c.symbol,
		"id":     strconv.FormatInt(id, 10),
		"start":  start.UnixMilli(),
		"end":    end.UnixMilli(),
		"high":   formatFloatPlain(high),
		"low":    formatFloatPlain(low),
	}

	var resp bridgeResponse[struct{}]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/chart/rect", nil, body, true, &resp); err != nil {
		c.logEntry().WithError(err).WithField("rect_id", id).Warn("Не удалось нарисовать прямоугольник.")
	}
}

func (c *Client) Remove(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body := map[string]any{
		"symbol": c.symbol,
		"id":     strconv.FormatInt(id, 10),
	}

	var resp bridgeResponse[struct{}]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/chart/rect/remove", nil, body, true, &resp); err != nil {
		c.logEntry().WithError(err).WithField("rect_id", id).Warn("Не удалось удалить прямоугольник.")
	}
}
