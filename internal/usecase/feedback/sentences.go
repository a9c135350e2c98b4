package feedback

import "strings"

// SplitSentences splits a raw feedback text into trimmed sentences on
// terminal punctuation. Blank fragments are dropped.
func SplitSentences(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		sentences = append(sentences, f)
	}
	return sentences
}
