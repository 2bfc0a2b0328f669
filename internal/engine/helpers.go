package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"oiobot/internal/broker"
	"oiobot/internal/models"
)

// withRetryRules — единственный ретрай в движке: ограничения инструмента
// нужны до запуска цикла событий. Торговые операции не повторяются.
func (e *Engine) withRetryRules(ctx context.Context, symbol string) (broker.InstrumentRules, error) {
	var lastErr error
	var backoff time.Duration = 1 * time.Second
	for i := 0; i < 5; i++ {
		rules, err := e.gateway.InstrumentRules(ctx, symbol)
		if err == nil {
			return rules, nil
		}
		lastErr = err
		wait := backoff
		if broker.IsRetriableReject(err) {
			wait = backoff * 4
		}
		if wait > 30*time.Second {
			wait = 30 * time.Second
		}
		e.logEntry().WithError(lastErr).Warn("Ошибка, повторяем запрос ограничений.")
		select {
		case <-ctx.Done():
			return broker.InstrumentRules{}, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
	return broker.InstrumentRules{}, lastErr
}

func (e *Engine) resolveRef(ctx context.Context, ref string) (models.Resolution, bool) {
	res, err := e.gateway.Resolve(ctx, e.cfg.Bot.Symbol, ref)
	if err != nil {
		e.logEntry().WithError(err).WithField("ref", ref).Warn("Не удалось получить состояние тикета.")
		return models.Resolution{}, false
	}
	if !e.owns(res) {
		return models.Resolution{Ref: ref, Status: models.RefStatusGone}, true
	}
	return res, true
}

// owns сверяет тег владения на каждом перечитанном тикете.
func (e *Engine) owns(res models.Resolution) bool {
	if res.Tag == "" || res.Tag == e.cfg.Bot.OrderTag {
		return true
	}
	e.logEntry().WithFields(map[string]interface{}{
		"ref": res.Ref,
		"tag": res.Tag,
	}).Warn("Тикет с чужим тегом, игнорируется.")
	return false
}

func (e *Engine) linkID(cycleID int64, role string) string {
	return fmt.Sprintf("%s-%d-%s", e.cfg.Bot.OrderTag, cycleID, role)
}

// parseLinkID разбирает "<tag>-<cycleID>-<role>" с конца: сам тег может
// содержать дефисы.
func (e *Engine) parseLinkID(linkID string) (int64, string, bool) {
	roleIdx := strings.LastIndex(linkID, "-")
	if roleIdx <= 0 {
		return 0, "", false
	}
	role := linkID[roleIdx+1:]
	rest := linkID[:roleIdx]

	idIdx := strings.LastIndex(rest, "-")
	if idIdx <= 0 {
		return 0, "", false
	}
	cycleID, err := strconv.ParseInt(rest[idIdx+1:], 10, 64)
	if err != nil {
		return 0, "", false
	}
	if rest[:idIdx] != e.cfg.Bot.OrderTag {
		return 0, "", false
	}
	return cycleID, role, true
}
