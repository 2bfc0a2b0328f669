package bridge

import "testing"

func TestFormatFloatPlain(t *testing.T) {
	cases := []struct {
		val  float64
		want string
	}{
		{10.00001, "10.00001"},
		{9, "9"},
		{0.1, "0.1"},
		{0, "0"},
		{-1.2345, "-1.2345"},
	}

	for _, tc := range cases {
		if got := formatFloatPlain(tc.val); got != tc.want {
			t.Errorf("formatFloatPlain(%v): expected %q, got %q", tc.val, tc.want, got)
		}
	}
}
