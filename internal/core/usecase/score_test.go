package usecase

import "testing"

func TestScoreIsDeterministic(t *testing.T) {
	table := PrimaryScoreTable()
	first := Score("Pink Floyd discography", "Pink Floyd", table)
	second := Score("Pink Floyd discography", "Pink Floyd", table)
	if first != second {
		t.Fatalf("expected identical scores, got %d and %d", first, second)
	}
}

func TestScorePrefersExactMatchOverSubTopic(t *testing.T) {
	table := PrimaryScoreTable()
	exact := Score("Queen", "Queen", table)
	album := Score("Queen (album)", "Queen", table)
	if exact <= album {
		t.Fatalf("expected exact match to win: exact=%d album=%d", exact, album)
	}
}

func TestScoreComponents(t *testing.T) {
	table := PrimaryScoreTable()
	tests := []struct {
		name  string
		title string
		query string
		want  int
	}{
		// +100 exact, +15 short title
		{name: "exact short", title: "Queen", query: "queen", want: 115},
		// +100 exact (case-insensitive), +15 short
		{name: "case insensitive", title: "PINK FLOYD", query: "pink floyd", want: 115},
		// +50 substring, -60 album keyword, -30 separator, +15 short
		{name: "album parenthetical", title: "Queen (album)", query: "Queen", want: -25},
		// +50 substring, +20 entity bonus, +15 short
		{name: "band parenthetical", title: "Queen (band)", query: "Queen", want: 85},
		// no match, no keywords, long title penalty
		{name: "long unrelated", title: "A considerably long unrelated article title", query: "queen", want: -10},
		// empty inputs stay defined
		{name: "empty both", title: "", query: "", want: 115},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.title, tt.query, table); got != tt.want {
				t.Fatalf("Score(%q, %q) = %d, want %d", tt.title, tt.query, got, tt.want)
			}
		})
	}
}

func TestRankExactMatchDominatesSubTopics(t *testing.T) {
	candidates := []string{
		"Pink Floyd",
		"The Dark Side of the Moon (album)",
		"Pink Floyd discography",
	}

	ranked := Rank(candidates, "Pink Floyd", PrimaryScoreTable())
	if ranked[0].Title != "Pink Floyd" {
		t.Fatalf("expected Pink Floyd first, got %q", ranked[0].Title)
	}
}

func TestRankKeepsProviderOrderOnTies(t *testing.T) {
	candidates := []string{"Alpha Beta", "Gamma Delta", "Theta Iota"}

	ranked := Rank(candidates, "unrelated query text", SecondaryScoreTable())
	for i, candidate := range candidates {
		if ranked[i].Title != candidate {
			t.Fatalf("tie order broken at %d: got %q, want %q", i, ranked[i].Title, candidate)
		}
	}
}

func TestSecondaryTableIsLooser(t *testing.T) {
	title := "Pink Floyd discography"
	query := "Pink Floyd"
	primary := Score(title, query, PrimaryScoreTable())
	secondary := Score(title, query, SecondaryScoreTable())
	if secondary <= primary {
		t.Fatalf("expected looser secondary penalty: primary=%d secondary=%d", primary, secondary)
	}
}
