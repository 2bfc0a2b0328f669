package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"oiobot/internal/broker/bridge"
	"oiobot/internal/chart"
	"oiobot/internal/config"
	"oiobot/internal/engine"
	"oiobot/internal/logger"
	"oiobot/internal/metrics"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	logger.Info("Бот запущен.")

	if cfg.Runtime.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.Runtime.MetricsAddr); err != nil {
				logger.WithError(err).Error("Сервер метрик завершился с ошибкой.")
			}
		}()
	}

	client := bridge.New(cfg.Bridge.BaseUrl, cfg.Bridge.WSUrl, cfg.Bridge.ApiKey, cfg.Bridge.Secret, logger)
	defer client.Close()

	var annotator chart.Annotator = client
	if !cfg.Bot.DrawRectangles {
		annotator = chart.Nop{}
	}

	eng := engine.New(cfg, client, annotator, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := eng.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Движок завершился с ошибкой.")
		}
	}()
	<-sigCh
	cancel()
	logger.Info("Бот остановлен.")
}
