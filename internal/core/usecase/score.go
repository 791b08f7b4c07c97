package usecase

import (
	"sort"
	"strings"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

// ScoreTable tunes the relevance heuristics for one backend. The primary
// table is strict about sub-topic titles; the secondary table is looser
// because the Action API search already ranks aggressively.
type ScoreTable struct {
	Keywords         map[string]int `yaml:"keywords"`
	SeparatorPenalty int            `yaml:"separator_penalty"`
	EntityBonus      int            `yaml:"entity_bonus"`
}

func PrimaryScoreTable() ScoreTable {
	return ScoreTable{
		Keywords: map[string]int{
			"album":         -60,
			"song":          -60,
			"single":        -60,
			"discography":   -70,
			"tour":          -50,
			"live":          -50,
			"compilation":   -40,
			"greatest hits": -40,
		},
		SeparatorPenalty: -30,
		EntityBonus:      20,
	}
}

func SecondaryScoreTable() ScoreTable {
	return ScoreTable{
		Keywords: map[string]int{
			"discography": -40,
			"album":       -30,
			"song":        -30,
			"tour":        -25,
			"live":        -25,
			"compilation": -20,
		},
		SeparatorPenalty: -25,
		EntityBonus:      10,
	}
}

// subTopicSeparators mark titles that usually name a work or a sub-topic
// rather than the entity itself.
var subTopicSeparators = []string{" – ", " - ", ": ", "(album)", "(song)"}

// entityMarkers are parentheticals that denote the entity itself and are
// preferred over the bare, possibly ambiguous title.
var entityMarkers = []string{"(band)", "(musician)"}

// Score rates how well a candidate title answers the query. Pure and total:
// any two strings, including empty and non-ASCII ones, produce a stable
// integer.
func Score(title, query string, table ScoreTable) int {
	titleLower := strings.ToLower(title)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	score := 0
	switch {
	case titleLower == queryLower:
		score += 100
	case queryLower != "" && strings.Contains(titleLower, queryLower):
		score += 50
	}

	for keyword, penalty := range table.Keywords {
		if strings.Contains(titleLower, keyword) {
			score += penalty
		}
	}

	switch {
	case containsAny(title, entityMarkers):
		score += table.EntityBonus
	case containsAny(title, subTopicSeparators):
		score += table.SeparatorPenalty
	}

	length := len([]rune(title))
	if length < 15 {
		score += 15
	} else if length > 30 {
		score -= 10
	}

	return score
}

// Rank scores every candidate and orders them best-first. The sort is
// stable: equal scores keep the provider's original order.
func Rank(titles []string, query string, table ScoreTable) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(titles))
	for _, title := range titles {
		scored = append(scored, domain.ScoredCandidate{
			Title: title,
			Score: Score(title, query, table),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
