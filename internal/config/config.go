package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Bridge  BridgeConfig
	Bot     BotConfig
	Runtime RuntimeConfig
}

type BridgeConfig struct {
	BaseUrl string
	WSUrl   string
	ApiKey  string
	Secret  string
}

type BotConfig struct {
	Symbol          string
	Timeframe       string
	OrderQty        float64
	TPDistanceTicks int
	SLDistanceTicks int
	OrderTag        string
	PollInterval    time.Duration
	DrawRectangles  bool
}

type RuntimeConfig struct {
	RestoreOnStart bool
	MetricsAddr    string
	Log            LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

var timeframes = map[string]time.Duration{
	"M1":  1 * time.Minute,
	"M5":  5 * time.Minute,
	"M15": 15 * time.Minute,
	"M30": 30 * time.Minute,
	"H1":  1 * time.Hour,
	"H4":  4 * time.Hour,
	"D1":  24 * time.Hour,
}

func Load() (*Config, error) {

	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("bot.timeframe", "M15")
	viper.SetDefault("bot.tp_distance_ticks", 30)
	viper.SetDefault("bot.poll_interval", "2s")
	viper.SetDefault("bot.draw_rectangles", true)

	cfg.Bridge = BridgeConfig{
		BaseUrl: viper.GetString("bridge.base_url"),
		WSUrl:   viper.GetString("bridge.ws_url"),
		ApiKey:  envSub("bridge.api_key"),
		Secret:  envSub("bridge.secret"),
	}

	cfg.Bot = BotConfig{
		Symbol:          viper.GetString("bot.symbol"),
		Timeframe:       strings.ToUpper(viper.GetString("bot.timeframe")),
		OrderQty:        viper.GetFloat64("bot.order_qty"),
		TPDistanceTicks: viper.GetInt("bot.tp_distance_ticks"),
		SLDistanceTicks: viper.GetInt("bot.sl_distance_ticks"),
		OrderTag:        viper.GetString("bot.order_tag"),
		PollInterval:    viper.GetDuration("bot.poll_interval"),
		DrawRectangles:  viper.GetBool("bot.draw_rectangles"),
	}

	cfg.Runtime = RuntimeConfig{
		RestoreOnStart: viper.GetBool("runtime.restore_on_start"),
		MetricsAddr:    viper.GetString("runtime.metrics_addr"),
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
	}

	return cfg, nil
}

// Validate проверяет статические параметры до запуска цикла событий.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Symbol) == "" {
		return fmt.Errorf("Не задан торговый символ.")
	}
	if _, ok := timeframes[c.Bot.Timeframe]; !ok {
		return fmt.Errorf("Неизвестный таймфрейм: %s", c.Bot.Timeframe)
	}
	if c.Bot.OrderQty <= 0 {
		return fmt.Errorf("Объём ордера должен быть положительным: %f", c.Bot.OrderQty)
	}
	if c.Bot.TPDistanceTicks <= 0 {
		return fmt.Errorf("Дистанция TP должна быть положительной: %d", c.Bot.TPDistanceTicks)
	}
	if c.Bot.SLDistanceTicks < 0 {
		return fmt.Errorf("Дистанция SL не может быть отрицательной: %d", c.Bot.SLDistanceTicks)
	}
	if strings.TrimSpace(c.Bot.OrderTag) == "" {
		return fmt.Errorf("Не задан тег ордеров бота.")
	}
	if c.Bot.PollInterval <= 0 {
		return fmt.Errorf("Интервал опроса баров должен быть положительным: %s", c.Bot.PollInterval)
	}
	if c.Bridge.BaseUrl == "" {
		return fmt.Errorf("Не задан base_url брокерского моста.")
	}
	return nil
}

// TimeframeDuration — длительность одного бара настроенного таймфрейма.
func (c *Config) TimeframeDuration() time.Duration {
	return timeframes[c.Bot.Timeframe]
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
