package domain

import "time"

// Article is a confirmed, fetchable encyclopedia page. Immutable once built
// by a content-source adapter.
type Article struct {
	Title    string `json:"title"`
	Extract  string `json:"extract"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

// ScoredCandidate pairs a search-result title with its relevance score.
type ScoredCandidate struct {
	Title string
	Score int
}

type OutcomeStatus string

const (
	StatusResolved  OutcomeStatus = "resolved"
	StatusAmbiguous OutcomeStatus = "ambiguous"
	StatusNotFound  OutcomeStatus = "not_found"
)

// Outcome is the terminal result of one resolution attempt. Exactly one of
// Article, Options or Suggestions is meaningful, selected by Status.
type Outcome struct {
	Status      OutcomeStatus `json:"status"`
	Query       string        `json:"query"`
	Article     *Article      `json:"article,omitempty"`
	Options     []string      `json:"options,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

func Resolved(query string, article *Article) Outcome {
	return Outcome{Status: StatusResolved, Query: query, Article: article}
}

func Ambiguous(query string, options []string) Outcome {
	return Outcome{Status: StatusAmbiguous, Query: query, Options: options}
}

func NotFound(query string, suggestions []string) Outcome {
	return Outcome{Status: StatusNotFound, Query: query, Suggestions: suggestions}
}

// LookupEvent records one completed resolution for the lookup history.
type LookupEvent struct {
	ID     string        `json:"id"`
	Query  string        `json:"query"`
	Status OutcomeStatus `json:"status"`
	Title  string        `json:"title,omitempty"`
	URL    string        `json:"url,omitempty"`
	At     time.Time     `json:"at"`
}
