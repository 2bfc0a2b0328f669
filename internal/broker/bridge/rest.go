package bridge

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"oiobot/internal/broker"
	"oiobot/internal/models"
)

type bridgeResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  T      `json:"result"`
	Time    int64  `json:"time"`
}

type instrumentInfo struct {
	Symbol          string `json:"symbol"`
	Digits          int    `json:"digits"`
	TickSize        string `json:"tickSize"`
	MinStopDistance string `json:"minStopDistance"`
	MinQty          string `json:"minQty"`
	QtyStep         string `json:"qtyStep"`
}

func (c *Client) InstrumentRules(ctx context.Context, symbol string) (broker.InstrumentRules, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp bridgeResponse[instrumentInfo]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/instrument", params, nil, false, &resp); err != nil {
		return broker.InstrumentRules{}, err
	}
	if resp.Result.Symbol == "" {
		return broker.InstrumentRules{}, fmt.Errorf("Инструмент не найден: %s", symbol)
	}

	tick, _ := strconv.ParseFloat(resp.Result.TickSize, 64)
	minStop, _ := strconv.ParseFloat(resp.Result.MinStopDistance, 64)
	minQty, _ := strconv.ParseFloat(resp.Result.MinQty, 64)
	qtyStep, _ := strconv.ParseFloat(resp.Result.QtyStep, 64)
	if tick == 0 && resp.Result.Digits > 0 {
		tick = models.TickFromDigits(resp.Result.Digits)
	}

	return broker.InstrumentRules{
		Digits:          resp.Result.Digits,
		TickSize:        tick,
		MinStopDistance: minStop,
		MinQty:          minQty,
		QtyStep:         qtyStep,
	}, nil
}

func (c *Client) RecentClosedBars(ctx context.Context, symbol, timeframe string, n int) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("timeframe", timeframe)
	params.Set("limit", strconv.Itoa(n))

	var resp bridgeResponse[struct {
		List []struct {
			OpenTime int64  `json:"openTime"`
			Open     string `json:"open"`
			High     string `json:"high"`
			Low      string `json:"low"`
			Close    string `json:"close"`
		} `json:"list"`
	}]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/bars", params, nil, false, &resp); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(resp.Result.List))
	for _, item := range resp.Result.List {
		open, _ := strconv.ParseFloat(item.Open, 64)
		high, _ := strconv.ParseFloat(item.High, 64)
		low, _ := strconv.ParseFloat(item.Low, 64)
		closePx, _ := strconv.ParseFloat(item.Close, 64)
		bars = append(bars, models.Bar{
			OpenTime: time.UnixMilli(item.OpenTime),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePx,
		})
	}
	return bars, nil
}

func (c *Client) LatestQuote(ctx context.Context, symbol string) (models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp bridgeResponse[struct {
		Bid string `json:"bid"`
		Ask string `json:"ask"`
		TS  int64  `json:"ts"`
	}]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/quote", params, nil, false, &resp); err != nil {
		return models.Quote{}, err
	}

	bid, _ := strconv.ParseFloat(resp.Result.Bid, 64)
	ask, _ := strconv.ParseFloat(resp.Result.Ask, 64)
	return models.Quote{
		Symbol:    symbol,
		Bid:       bid,
		Ask:       ask,
		Timestamp: time.UnixMilli(resp.Result.TS),
	}, nil
}

func (c *Client) PlacePendingOrder(ctx context.Context, req broker.PendingOrderRequest) (string, error) {
	body := map[string]any{
		"symbol":     req.Symbol,
		"direction":  req.Direction,
		"price":      formatFloatPlain(req.Price),
		"qty":        formatFloatPlain(req.Qty),
		"stopLoss":   formatFloatPlain(req.StopLoss),
		"takeProfit": formatFloatPlain(req.TakeProfit),
		"linkId":     req.LinkID,
		"tag":        req.Tag,
	}

	var resp bridgeResponse[struct {
		Ref string `json:"ref"`
	}]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/orders/pending", nil, body, true, &resp); err != nil {
		return "", err
	}
	return resp.Result.Ref, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol, ref string) error {
	body := map[string]any{
		"symbol": symbol,
		"ref":    ref,
	}

	var resp bridgeResponse[struct{}]
	return c.doRequest(ctx, http.MethodPost, "/api/v1/orders/cancel", nil, body, true, &resp)
}

func (c *Client) ModifyStops(ctx context.Context, symbol, ref string, stopLoss, takeProfit float64) error {
	body := map[string]any{
		"symbol":     symbol,
		"ref":        ref,
		"stopLoss":   formatFloatPlain(stopLoss),
		"takeProfit": formatFloatPlain(takeProfit),
	}

	var resp bridgeResponse[struct{}]
	return c.doRequest(ctx, http.MethodPost, "/api/v1/positions/modify", nil, body, true, &resp)
}

type refPayload struct {
	Ref    string `json:"ref"`
	Status string `json:"status"`
	Tag    string `json:"tag"`
	LinkID string `json:"linkId"`

	Direction  string `json:"direction"`
	Price      string `json:"price"`
	Qty        string `json:"qty"`
	EntryPrice string `json:"entryPrice"`
	Volume     string `json:"volume"`
	StopLoss   string `json:"stopLoss"`
	TakeProfit string `json:"takeProfit"`
	OpenTime   int64  `json:"openTime"`
}

func (c *Client) Resolve(ctx context.Context, symbol, ref string) (models.Resolution, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("ref", ref)

	var resp bridgeResponse[refPayload]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/refs/resolve", params, nil, true, &resp); err != nil {
		if broker.IsMootReject(err) {
			return models.Resolution{Ref: ref, Status: models.RefStatusGone}, nil
		}
		return models.Resolution{}, err
	}
	return c.toResolution(symbol, resp.Result), nil
}

func (c *Client) OpenRefs(ctx context.Context, symbol, tag string) ([]models.Resolution, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("tag", tag)

	var resp bridgeResponse[struct {
		List []refPayload `json:"list"`
	}]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/refs/open", params, nil, true, &resp); err != nil {
		return nil, err
	}

	refs := make([]models.Resolution, 0, len(resp.Result.List))
	for _, item := range resp.Result.List {
		refs = append(refs, c.toResolution(symbol, item))
	}
	return refs, nil
}

func (c *Client) toResolution(symbol string, item refPayload) models.Resolution {
	res := models.Resolution{
		Ref:    item.Ref,
		Tag:    item.Tag,
		LinkID: item.LinkID,
	}
	sl, _ := strconv.ParseFloat(item.StopLoss, 64)
	tp, _ := strconv.ParseFloat(item.TakeProfit, 64)

	switch item.Status {
	case "pending":
		res.Status = models.RefStatusPending
		price, _ := strconv.ParseFloat(item.Price, 64)
		qty, _ := strconv.ParseFloat(item.Qty, 64)
		res.Pending = &models.PendingOrder{
			Ref:        item.Ref,
			LinkID:     item.LinkID,
			Symbol:     symbol,
			Direction:  models.Direction(item.Direction),
			Price:      price,
			Qty:        qty,
			StopLoss:   sl,
			TakeProfit: tp,
			Tag:        item.Tag,
		}
	case "position":
		res.Status = models.RefStatusPosition
		entry, _ := strconv.ParseFloat(item.EntryPrice, 64)
		volume, _ := strconv.ParseFloat(item.Volume, 64)
		res.Position = &models.Position{
			Ref:        item.Ref,
			LinkID:     item.LinkID,
			Symbol:     symbol,
			Direction:  models.Direction(item.Direction),
			EntryPrice: entry,
			Volume:     volume,
			StopLoss:   sl,
			TakeProfit: tp,
			Tag:        item.Tag,
			OpenTime:   time.UnixMilli(item.OpenTime),
		}
	default:
		res.Status = models.RefStatusGone
	}
	return res
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body any, auth bool, out any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("Не удалось подготовить тело запроса: %w", err)
		}
		bodyStr = string(payload)
		bodyReader = bytes.NewReader(payload)
	}

	urlStr := c.baseURL + path
	if len(params) > 0 {
		urlStr += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, bodyReader)
	if err != nil {
		return fmt.Errorf("Не удалось создать запрос: %w", err)
	}

	if auth {
		timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
		query := ""
		if method == http.MethodGet && len(params) > 0 {
			query = params.Encode()
		}
		signBase := timestamp + c.apiKey + query + bodyStr
		signature := sign(c.secret, signBase)
		req.Header.Set("X-BRIDGE-API-KEY", c.apiKey)
		req.Header.Set("X-BRIDGE-SIGN", signature)
		req.Header.Set("X-BRIDGE-TIMESTAMP", timestamp)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Ошибка запроса: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("Не удалось прочитать ответ: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("Не удалось разобрать ответ: %w", err)
	}

	if code, message, ok := extractCode(out); ok && code != 0 {
		return fmt.Errorf("Ошибка моста: %s (code=%d)", message, code)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Неуспешный статус: %s", resp.Status)
	}

	return nil
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func extractCode(v any) (int, string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return 0, "", false
	}
	codeField := rv.FieldByName("Code")
	messageField := rv.FieldByName("Message")
	if codeField.IsValid() && messageField.IsValid() {
		return int(codeField.Int()), messageField.String(), true
	}
	return 0, "", false
}
