package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehranbolhasani/weekeepediabot/internal/adapters/telegram"
	"github.com/mehranbolhasani/weekeepediabot/internal/bootstrap"
	"github.com/mehranbolhasani/weekeepediabot/internal/config"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/logging"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("bot", cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	botMetrics := metrics.NewBotMetrics("bot")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.BotMetricsPort,
		Handler: botMetrics.Handler(),
	}

	bot, err := telegram.New(cfg.BotToken, telegram.BotOptions{
		Resolver:      app.Resolver,
		Formatter:     app.Formatter,
		LongFormatter: app.LongFormatter,
		Chunker:       app.Chunker,
		Pending:       telegram.NewPendingStore(cfg.PendingTTL),
		Queue:         app.Queue,
		Metrics:       botMetrics,
	})
	if err != nil {
		log.Fatalf("telegram error: %v", err)
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("bot started")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
