package usecase

import (
	"strings"
	"testing"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

func TestFormatComposesTemplate(t *testing.T) {
	formatter := NewFormatter(800)
	article := &domain.Article{
		Title:   "Pink Floyd",
		Extract: "Pink Floyd are an English rock band. They formed in London in 1965.",
		URL:     "https://en.wikipedia.org/wiki/Pink_Floyd",
	}

	got := formatter.Format(article)

	if !strings.HasPrefix(got, "📖 *Pink Floyd*\n\n") {
		t.Fatalf("missing title heading: %q", got)
	}
	if !strings.Contains(got, "_Pink Floyd are an English rock band._") {
		t.Fatalf("lead sentence not emphasized: %q", got)
	}
	if !strings.Contains(got, "They formed in London in 1965.") {
		t.Fatalf("extract body missing: %q", got)
	}
	if !strings.HasSuffix(got, "(https://en.wikipedia.org/wiki/Pink_Floyd)") {
		t.Fatalf("missing trailing link: %q", got)
	}
}

func TestFormatTruncatesLongExtractMidSentence(t *testing.T) {
	formatter := NewFormatter(10)
	article := &domain.Article{
		Title:   "X",
		Extract: "abcdefghij-and-much-more",
		URL:     "https://example.org/x",
	}

	got := formatter.Format(article)
	if !strings.Contains(got, "_abcdefghij..._") {
		t.Fatalf("expected hard truncation with marker, got %q", got)
	}
	if strings.Contains(got, "and-much-more") {
		t.Fatalf("truncated tail leaked through: %q", got)
	}
}

func TestFormatCountsRunesNotBytes(t *testing.T) {
	formatter := NewFormatter(4)
	article := &domain.Article{
		Title:   "Ü",
		Extract: "äöüßx",
		URL:     "https://example.org/u",
	}

	got := formatter.Format(article)
	if !strings.Contains(got, "äöüß...") {
		t.Fatalf("expected four-rune cut, got %q", got)
	}
}

func TestFormatHandlesEmptyExtract(t *testing.T) {
	formatter := NewFormatter(800)
	article := &domain.Article{Title: "Stub", URL: "https://example.org/stub"}

	got := formatter.Format(article)
	if !strings.Contains(got, "📖 *Stub*") || !strings.Contains(got, "https://example.org/stub") {
		t.Fatalf("unexpected output for empty extract: %q", got)
	}
}
