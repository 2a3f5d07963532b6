package contextmgr

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxKeyPoints      = 5
	minKeyPoints      = 3
	fallbackSentences = 5
)

// importance markers used to pick summary sentences out of an analysis
var keyIndicators = []string{"main", "primary", "key", "core", "critical", "essential", "important"}

// appendSummary folds a section's distilled analysis into the carried
// summary, dropping the oldest content once the limit is exceeded
func appendSummary(summary, sectionName, analysis string, maxLen int) string {
	summary += fmt.Sprintf("\n\nSection '%s':\n%s\n", sectionName, distillKeyPoints(analysis))
	if len(summary) > maxLen {
		cut := len(summary) - maxLen
		// never cut inside a multi-byte rune
		for cut < len(summary) && !utf8.RuneStart(summary[cut]) {
			cut++
		}
		summary = summary[cut:]
	}
	return summary
}

// distillKeyPoints reduces an analysis to the sentences that flag
// important findings, falling back to the opening sentences when the
// analysis carries too few markers
func distillKeyPoints(analysis string) string {
	sentences := splitSentences(analysis)

	var picked []string
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, ind := range keyIndicators {
			if strings.Contains(lower, ind) {
				picked = append(picked, s)
				break
			}
		}
		if len(picked) >= maxKeyPoints {
			break
		}
	}
	if len(picked) < minKeyPoints {
		picked = sentences
		if len(picked) > fallbackSentences {
			picked = picked[:fallbackSentences]
		}
	}
	return strings.Join(picked, " ")
}

// splitSentences cuts text after terminal punctuation followed by
// whitespace
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && isSpace(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
