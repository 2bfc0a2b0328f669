package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			BaseUrl: "http://127.0.0.1:8787",
			WSUrl:   "ws://127.0.0.1:8787/ws",
		},
		Bot: BotConfig{
			Symbol:          "EURUSD",
			Timeframe:       "M15",
			OrderQty:        0.1,
			TPDistanceTicks: 30,
			OrderTag:        "oio-bot",
			PollInterval:    2 * time.Second,
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	cases := []struct {
		name  string
		mutate func(*Config)
	}{
		{"empty symbol", func(c *Config) { c.Bot.Symbol = " " }},
		{"unknown timeframe", func(c *Config) { c.Bot.Timeframe = "M7" }},
		{"zero qty", func(c *Config) { c.Bot.OrderQty = 0 }},
		{"zero tp distance", func(c *Config) { c.Bot.TPDistanceTicks = 0 }},
		{"negative sl distance", func(c *Config) { c.Bot.SLDistanceTicks = -1 }},
		{"empty tag", func(c *Config) { c.Bot.OrderTag = "" }},
		{"zero poll interval", func(c *Config) { c.Bot.PollInterval = 0 }},
		{"empty base url", func(c *Config) { c.Bridge.BaseUrl = "" }},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestTimeframeDuration(t *testing.T) {
	cfg := validConfig()
	if d := cfg.TimeframeDuration(); d != 15*time.Minute {
		t.Errorf("expected 15m for M15, got %s", d)
	}
	cfg.Bot.Timeframe = "H4"
	if d := cfg.TimeframeDuration(); d != 4*time.Hour {
		t.Errorf("expected 4h for H4, got %s", d)
	}
}
