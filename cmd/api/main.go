package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mehranbolhasani/weekeepediabot/internal/adapters/http"
	"github.com/mehranbolhasani/weekeepediabot/internal/bootstrap"
	"github.com/mehranbolhasani/weekeepediabot/internal/config"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/repository/postgres"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/logging"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLookupRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	serverMetrics := metrics.NewHTTPServerMetrics("api")

	// The bot publishes one event per completed resolution; this side of
	// the queue writes them into the lookup history.
	go func() {
		err := app.Queue.SubscribeLookups(ctx, func(handlerCtx context.Context, event domain.LookupEvent) error {
			recordCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Second)
			defer cancel()
			if err := repo.Record(recordCtx, event); err != nil {
				serverMetrics.RecordLookupConsumed("api", "error")
				return err
			}
			serverMetrics.RecordLookupConsumed("api", "ok")
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("lookup subscription failed", "error", err)
		}
	}()

	router := httpadapter.NewRouter(app.Resolver, repo, app.Formatter, app.Chunker, serverMetrics).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
