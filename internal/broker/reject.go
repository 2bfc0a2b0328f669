package broker

import "strings"

// Классификация отказов брокера по кодам моста (коды в духе MetaTrader).
// Мост вставляет код в текст ошибки как "(code=NNN)".

var retriableCodes = []string{
	"(code=6)",   // no connection
	"(code=128)", // trade timeout
	"(code=135)", // price changed
	"(code=136)", // off quotes
	"(code=137)", // broker busy
	"(code=138)", // requote
	"(code=141)", // too many requests
	"(code=146)", // trade context busy
}

var nonRetriableCodes = []string{
	"(code=129)", // invalid price
	"(code=130)", // invalid stops
	"(code=131)", // invalid volume
	"(code=132)", // market closed
	"(code=133)", // trade disabled
	"(code=134)", // not enough money
	"(code=148)", // too many orders
}

var mootCodes = []string{
	"(code=4105)", // no order selected
	"(code=4108)", // invalid ticket
}

func IsRetriableReject(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if containsAnyCode(msg, retriableCodes) {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "429") || strings.Contains(lower, "timeout") || strings.Contains(lower, "connection")
}

func IsNonRetriableReject(err error) bool {
	if err == nil {
		return false
	}
	return containsAnyCode(err.Error(), nonRetriableCodes)
}

// IsMootReject — отказ "ордера уже нет": для отмены считается успехом.
func IsMootReject(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if containsAnyCode(msg, mootCodes) {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "invalid ticket") || strings.Contains(lower, "order not found")
}

// IsNoChange — модификация не потребовалась, стопы уже такие.
func IsNoChange(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "(code=1)") || strings.Contains(strings.ToLower(msg), "no changes")
}

func containsAnyCode(msg string, codes []string) bool {
	for _, code := range codes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

// RejectClass — метка класса отказа для логов и метрик.
func RejectClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsMootReject(err):
		return "moot"
	case IsNonRetriableReject(err):
		return "request"
	case IsRetriableReject(err):
		return "environment"
	default:
		return "unknown"
	}
}
