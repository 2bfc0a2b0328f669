package broker

import (
	"errors"
	"testing"
)

func TestRejectClass(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"requote", errors.New("Ошибка моста: requote (code=138)"), "environment"},
		{"no connection", errors.New("Ошибка моста: no connection (code=6)"), "environment"},
		{"invalid price", errors.New("Ошибка моста: invalid price (code=129)"), "request"},
		{"invalid stops", errors.New("Ошибка моста: invalid stops (code=130)"), "request"},
		{"not enough money", errors.New("Ошибка моста: not enough money (code=134)"), "request"},
		{"invalid ticket code", errors.New("Ошибка моста: invalid ticket (code=4108)"), "moot"},
		{"no order selected", errors.New("Ошибка моста: no order selected (code=4105)"), "moot"},
		{"order not found text", errors.New("Ошибка моста: order not found"), "moot"},
		{"http 429", errors.New("Ошибка запроса: статус 429"), "environment"},
		{"transport timeout", errors.New("Ошибка запроса: context deadline exceeded (Client.Timeout)"), "environment"},
		{"unknown code", errors.New("Ошибка моста: something odd (code=999)"), "unknown"},
	}

	for _, tc := range cases {
		if got := RejectClass(tc.err); got != tc.want {
			t.Errorf("%s: expected class %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestIsNoChange(t *testing.T) {
	if !IsNoChange(errors.New("Ошибка моста: no changes (code=1)")) {
		t.Error("expected (code=1) to be no-change")
	}
	// Код 1 не должен ловиться по префиксу в чужих кодах.
	if IsNoChange(errors.New("Ошибка моста: invalid price (code=129)")) {
		t.Error("(code=129) must not match as no-change")
	}
	if IsNoChange(nil) {
		t.Error("nil is not a no-change answer")
	}
}

func TestIsMootReject(t *testing.T) {
	if !IsMootReject(errors.New("Ошибка моста: invalid ticket (code=4108)")) {
		t.Error("expected (code=4108) to be moot")
	}
	if IsMootReject(errors.New("Ошибка моста: market closed (code=132)")) {
		t.Error("(code=132) is a real reject, not moot")
	}
}

func TestIsRetriableReject(t *testing.T) {
	if !IsRetriableReject(errors.New("Ошибка запроса: dial tcp: connection refused")) {
		t.Error("expected transport failure to be retriable")
	}
	if IsRetriableReject(errors.New("Ошибка моста: invalid volume (code=131)")) {
		t.Error("(code=131) must not be retriable")
	}
}
