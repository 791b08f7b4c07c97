package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/mehranbolhasani/weekeepediabot/internal/config"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/ports"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/usecase"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/chunking"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/queue/nats"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/resilience"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/wiki/actionapi"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/wiki/restapi"
)

// App wires the resolution core and the pieces both binaries share. The API
// binary additionally opens Postgres for the lookup history.
type App struct {
	Config config.Config

	Resolver      ports.TopicResolver
	Formatter     *usecase.Formatter
	LongFormatter *usecase.Formatter
	Chunker       ports.Chunker
	Queue         *nats.Queue

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	primaryTable, secondaryTable, err := config.LoadScoreTables(cfg.ScoreTablePath)
	if err != nil {
		return nil, fmt.Errorf("load score tables: %w", err)
	}

	// Each fallback stage gets exactly one attempt; the chain itself is
	// the retry strategy. The breaker still isolates a failing backend.
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 1,
		BreakerEnabled:   true,
	})

	httpClient := &http.Client{Timeout: cfg.WikiTimeout}
	primary := restapi.New(cfg.WikiRESTURL,
		restapi.WithHTTPClient(httpClient),
		restapi.WithExecutor(executor),
	)
	secondary := actionapi.New(cfg.WikiActionURL,
		actionapi.WithHTTPClient(httpClient),
		actionapi.WithExecutor(executor),
	)

	resolver := usecase.NewResolveUseCase(primary, secondary,
		usecase.WithSearchLimits(cfg.SearchLimit, cfg.SuggestLimit),
		usecase.WithScoreTables(primaryTable, secondaryTable),
	)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	return &App{
		Config: cfg,

		Resolver:      resolver,
		Formatter:     usecase.NewFormatter(cfg.ExtractLimit),
		LongFormatter: usecase.NewFormatter(cfg.LongExtractLimit),
		Chunker:       chunking.NewSplitter(cfg.MessageMaxLen),
		Queue:         queue,

		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
