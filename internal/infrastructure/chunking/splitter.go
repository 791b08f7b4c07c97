package chunking

import "strings"

const (
	paragraphSep = "\n\n"
	sentenceSep  = ". "
)

// Splitter reflows long text into an ordered sequence of chunks, each at
// most MaxLen runes. Splits happen at paragraph boundaries first, then at
// sentence boundaries inside an oversized paragraph, and only as a last
// resort mid-sentence at the rune level, so the length invariant always
// holds.
type Splitter struct {
	MaxLen int
}

func NewSplitter(maxLen int) *Splitter {
	if maxLen <= 0 {
		maxLen = 4000
	}
	return &Splitter{MaxLen: maxLen}
}

func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if runeLen(text) <= s.MaxLen {
		return []string{text}
	}

	var chunks []string
	current := ""

	for _, paragraph := range strings.Split(text, paragraphSep) {
		if candidate := join(current, paragraph, paragraphSep); runeLen(candidate) <= s.MaxLen {
			current = candidate
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
		if runeLen(paragraph) <= s.MaxLen {
			current = paragraph
			continue
		}

		// The paragraph alone exceeds the ceiling: same greedy
		// accumulation at sentence granularity.
		for _, sentence := range strings.Split(paragraph, sentenceSep) {
			if candidate := join(current, sentence, sentenceSep); runeLen(candidate) <= s.MaxLen {
				current = candidate
				continue
			}
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			if runeLen(sentence) <= s.MaxLen {
				current = sentence
				continue
			}

			// An atomic sentence past the ceiling: hard rune split.
			pieces := hardSplit(sentence, s.MaxLen)
			chunks = append(chunks, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func join(current, unit, sep string) string {
	if current == "" {
		return unit
	}
	return current + sep + unit
}

func hardSplit(s string, maxLen int) []string {
	runes := []rune(s)
	out := make([]string, 0, len(runes)/maxLen+1)
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
