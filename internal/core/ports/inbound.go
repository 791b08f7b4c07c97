package ports

import (
	"context"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

// TopicResolver is the inbound contract for turning a free-text query into
// one confirmed article or a terminal ambiguous/not-found outcome.
type TopicResolver interface {
	// Resolve auto-picks the best candidate across the fallback chain.
	Resolve(ctx context.Context, query string) domain.Outcome
	// ResolveChoices returns the raw candidate list for the user to pick
	// from when the query matches more than one page; with zero or one
	// candidate it behaves like Resolve.
	ResolveChoices(ctx context.Context, query string) domain.Outcome
}

// LookupReader is the inbound read model for resolution history.
type LookupReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.LookupEvent, error)
}
