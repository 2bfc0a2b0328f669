package models

import (
	"math"
	"testing"
)

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		price  float64
		digits int
		want   float64
	}{
		{9.000004, 5, 9.00000},
		{9.000007, 5, 9.00001},
		{1.234561, 5, 1.23456},
		{1.23, 2, 1.23},
		{100.7, 0, 101},
	}

	for _, tc := range cases {
		if got := NormalizePrice(tc.price, tc.digits); got != tc.want {
			t.Errorf("NormalizePrice(%v, %d): expected %v, got %v", tc.price, tc.digits, tc.want, got)
		}
	}
}

func TestTickFromDigits(t *testing.T) {
	if tick := TickFromDigits(5); math.Abs(tick-0.00001) > 1e-12 {
		t.Errorf("expected tick 0.00001 for 5 digits, got %v", tick)
	}
	if tick := TickFromDigits(0); tick != 1 {
		t.Errorf("expected tick 1 for 0 digits, got %v", tick)
	}
}
