package clustering

import (
	"sort"
	"strings"

	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

// Theme fallbacks.
const (
	themeFallback = "General feedback"
	themeEmpty    = "Empty cluster"
)

const themeTopWords = 3

// minTokenLen: tokens this short carry no theme signal.
const minTokenLen = 4

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// GenerateTheme labels a cluster with its top recurring significant words,
// comma-joined. Tokens are lowercased whitespace splits; short tokens and stop
// words are dropped. Frequency ties resolve by first appearance.
func GenerateTheme(items []item.Item) string {
	if len(items) == 0 {
		return themeEmpty
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for i := range items {
		for _, tok := range strings.Fields(items[i].Text()) {
			tok = strings.ToLower(tok)
			if len(tok) < minTokenLen || stopWords[tok] {
				continue
			}
			if _, ok := counts[tok]; !ok {
				firstSeen[tok] = order
				order++
			}
			counts[tok]++
		}
	}

	if len(counts) == 0 {
		return themeFallback
	}

	tokens := make([]string, 0, len(counts))
	for tok := range counts {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return firstSeen[tokens[i]] < firstSeen[tokens[j]]
	})

	if len(tokens) > themeTopWords {
		tokens = tokens[:themeTopWords]
	}
	return strings.Join(tokens, ", ")
}
