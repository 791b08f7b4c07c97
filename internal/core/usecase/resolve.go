package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/ports"
)

const (
	defaultSearchLimit  = 10
	defaultSuggestLimit = 8
	maxAmbiguousOptions = 5
	maxSuggestions      = 3
)

// ResolveUseCase turns a free-text topic query into one confirmed article.
// It walks a fallback chain across two content backends; a failure at any
// stage is never fatal, it only moves the chain forward.
type ResolveUseCase struct {
	primary   ports.ContentSource
	secondary ports.ContentSource

	primaryTable   ScoreTable
	secondaryTable ScoreTable

	searchLimit  int
	suggestLimit int
}

type ResolverOption func(*ResolveUseCase)

func WithSearchLimits(search, suggest int) ResolverOption {
	return func(uc *ResolveUseCase) {
		if search > 0 {
			uc.searchLimit = search
		}
		if suggest > 0 {
			uc.suggestLimit = suggest
		}
	}
}

func WithScoreTables(primary, secondary ScoreTable) ResolverOption {
	return func(uc *ResolveUseCase) {
		uc.primaryTable = primary
		uc.secondaryTable = secondary
	}
}

func NewResolveUseCase(primary, secondary ports.ContentSource, opts ...ResolverOption) *ResolveUseCase {
	uc := &ResolveUseCase{
		primary:        primary,
		secondary:      secondary,
		primaryTable:   PrimaryScoreTable(),
		secondaryTable: SecondaryScoreTable(),
		searchLimit:    defaultSearchLimit,
		suggestLimit:   defaultSuggestLimit,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Resolve runs the full auto-pick fallback chain:
//
//  1. primary search, score, fetch the single best candidate
//  2. secondary best-effort fetch; on disambiguation take the source's
//     top-ranked option
//  3. secondary search, fetch candidates best-first until one succeeds
//  4. one last search purely for user-facing suggestions
func (uc *ResolveUseCase) Resolve(ctx context.Context, query string) domain.Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.NotFound(query, nil)
	}

	if article := uc.resolvePrimary(ctx, query); article != nil {
		return domain.Resolved(query, article)
	}

	article, pageMissing := uc.resolveSecondary(ctx, query)
	if article != nil {
		return domain.Resolved(query, article)
	}

	if pageMissing {
		if article := uc.resolveSecondarySearch(ctx, query); article != nil {
			return domain.Resolved(query, article)
		}
	}

	return domain.NotFound(query, uc.suggestions(ctx, query))
}

// ResolveChoices is the explicit-choice entry point: with more than one raw
// primary candidate it returns them for the user to pick from, without
// fetching anything. Otherwise it falls back to the auto chain.
func (uc *ResolveUseCase) ResolveChoices(ctx context.Context, query string) domain.Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.NotFound(query, nil)
	}

	titles, err := uc.primary.Search(ctx, query, uc.searchLimit)
	if err != nil {
		slog.Debug("resolve_choices_search_failed", "query", query, "error", err)
	}
	if len(titles) > 1 {
		if len(titles) > maxAmbiguousOptions {
			titles = titles[:maxAmbiguousOptions]
		}
		return domain.Ambiguous(query, titles)
	}
	return uc.Resolve(ctx, query)
}

// resolvePrimary is stage 1: search the primary backend, rank the candidate
// titles and fetch only the winner. The primary backend is not retried.
func (uc *ResolveUseCase) resolvePrimary(ctx context.Context, query string) *domain.Article {
	titles, err := uc.primary.Search(ctx, query, uc.searchLimit)
	if err != nil {
		slog.Debug("primary_search_failed", "query", query, "error", err)
		return nil
	}
	if len(titles) == 0 {
		return nil
	}

	ranked := Rank(titles, query, uc.primaryTable)
	winner := ranked[0].Title

	article, err := uc.primary.Fetch(ctx, winner)
	if err != nil {
		slog.Debug("primary_fetch_failed", "query", query, "title", winner, "error", err)
		return nil
	}
	return article
}

// resolveSecondary is stage 2: a best-effort fetch by the raw query. A
// disambiguation answer is resolved by taking the first option, which is the
// source's own top-ranked page. pageMissing reports whether the backend
// positively confirmed there is no such page, which gates stage 3.
func (uc *ResolveUseCase) resolveSecondary(ctx context.Context, query string) (article *domain.Article, pageMissing bool) {
	article, err := uc.secondary.Fetch(ctx, query)
	if err == nil {
		return article, false
	}

	if d, ok := domain.AsDisambiguation(err); ok && len(d.Options) > 0 {
		article, err := uc.secondary.Fetch(ctx, d.Options[0])
		if err != nil {
			slog.Debug("secondary_disambiguation_fetch_failed", "query", query, "option", d.Options[0], "error", err)
			return nil, false
		}
		return article, false
	}

	if domain.IsKind(err, domain.ErrPageNotFound) {
		return nil, true
	}

	slog.Debug("secondary_fetch_failed", "query", query, "error", err)
	return nil, false
}

// resolveSecondarySearch is stage 3: search the secondary backend and fetch
// candidates in descending score order until one of them is a real page.
func (uc *ResolveUseCase) resolveSecondarySearch(ctx context.Context, query string) *domain.Article {
	titles, err := uc.secondary.Search(ctx, query, uc.suggestLimit)
	if err != nil {
		slog.Debug("secondary_search_failed", "query", query, "error", err)
		return nil
	}

	for _, candidate := range Rank(titles, query, uc.secondaryTable) {
		article, err := uc.secondary.Fetch(ctx, candidate.Title)
		if err != nil {
			slog.Debug("secondary_candidate_fetch_failed", "query", query, "title", candidate.Title, "error", err)
			continue
		}
		return article
	}
	return nil
}

// suggestions is stage 4: one last search whose results are shown to the
// user instead of being fetched. The failing query itself is filtered out so
// the user is never offered the exact same dead end.
func (uc *ResolveUseCase) suggestions(ctx context.Context, query string) []string {
	titles, err := uc.secondary.Search(ctx, query, uc.suggestLimit)
	if err != nil {
		slog.Debug("suggestion_search_failed", "query", query, "error", err)
		return nil
	}

	suggestions := make([]string, 0, maxSuggestions)
	for _, title := range titles {
		if strings.EqualFold(title, query) {
			continue
		}
		suggestions = append(suggestions, title)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil
	}
	return suggestions
}
