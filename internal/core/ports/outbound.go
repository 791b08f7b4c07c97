package ports

import (
	"context"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

// ContentSource is one encyclopedia backend. Search returns candidate titles
// in the provider's relevance order; an empty slice is a valid answer. Fetch
// confirms a title maps to a real page: it returns domain.ErrPageNotFound or
// a *domain.DisambiguationError as typed outcomes, any other error is a
// transport-level failure.
type ContentSource interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Fetch(ctx context.Context, title string) (*domain.Article, error)
}

// Chunker splits formatted text into transport-sized fragments.
type Chunker interface {
	Split(text string) []string
}

// LookupRepository persists the resolution history.
type LookupRepository interface {
	Record(ctx context.Context, event domain.LookupEvent) error
	ListRecent(ctx context.Context, limit int) ([]domain.LookupEvent, error)
}

// EventQueue publishes/consumes lookup events between the bot and the API.
type EventQueue interface {
	PublishLookup(ctx context.Context, event domain.LookupEvent) error
	SubscribeLookups(ctx context.Context, handler func(context.Context, domain.LookupEvent) error) error
}
