package usecase

import (
	"fmt"
	"strings"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

const truncationMarker = "..."

// Formatter composes a resolved article into the presentation-ready message
// body: a title heading, an emphasized lead sentence, the remaining extract
// and a trailing source link. Pure string work, no I/O.
type Formatter struct {
	// ExtractLimit caps the extract in runes; anything longer is cut at
	// the limit and marked, with no regard for sentence boundaries.
	ExtractLimit int
}

func NewFormatter(extractLimit int) *Formatter {
	if extractLimit <= 0 {
		extractLimit = 800
	}
	return &Formatter{ExtractLimit: extractLimit}
}

func (f *Formatter) Format(article *domain.Article) string {
	extract := strings.TrimSpace(strings.ReplaceAll(article.Extract, "\n", " "))
	if runes := []rune(extract); len(runes) > f.ExtractLimit {
		extract = string(runes[:f.ExtractLimit]) + truncationMarker
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📖 *%s*\n\n", article.Title)

	if extract != "" {
		lead, rest := splitLeadSentence(extract)
		fmt.Fprintf(&b, "_%s_\n\n", lead)
		if rest != "" {
			fmt.Fprintf(&b, "%s\n\n", rest)
		}
	}

	fmt.Fprintf(&b, "🔗 [Read more on Wikipedia](%s)", article.URL)
	return b.String()
}

func splitLeadSentence(extract string) (lead, rest string) {
	idx := strings.Index(extract, ". ")
	if idx < 0 {
		return extract, ""
	}
	return extract[:idx+1], strings.TrimSpace(extract[idx+2:])
}
