package clustering

import (
	"testing"

	"github.com/objones25/FeedbackFlow/internal/domain/item"
)

func themeItems(t *testing.T, texts ...string) []item.Item {
	t.Helper()
	items := make([]item.Item, 0, len(texts))
	for i, text := range texts {
		items = append(items, mkItem(t, string(rune('a'+i)), text, []float32{0.1}))
	}
	return items
}

func TestGenerateTheme_TopWords(t *testing.T) {
	items := themeItems(t,
		"shipping delays ruined everything",
		"shipping delays again",
		"shipping was slow and delivery delayed",
	)

	theme := GenerateTheme(items)
	if theme != "shipping, delays, ruined" {
		t.Errorf("theme = %q", theme)
	}
}

func TestGenerateTheme_DropsShortAndStopWords(t *testing.T) {
	// "with" is a stop word, everything else is three letters or fewer.
	items := themeItems(t, "the and or with to by in on at of for but")
	if got := GenerateTheme(items); got != "General feedback" {
		t.Errorf("theme = %q, want fallback", got)
	}
}

func TestGenerateTheme_Lowercases(t *testing.T) {
	items := themeItems(t, "Billing BILLING billing")
	if got := GenerateTheme(items); got != "billing" {
		t.Errorf("theme = %q", got)
	}
}

func TestGenerateTheme_TieBreaksByFirstSeen(t *testing.T) {
	items := themeItems(t, "alpha bravo charlie delta")
	// All frequency 1: first three seen win.
	if got := GenerateTheme(items); got != "alpha, bravo, charlie" {
		t.Errorf("theme = %q", got)
	}
}

func TestGenerateTheme_Empty(t *testing.T) {
	if got := GenerateTheme(nil); got != "Empty cluster" {
		t.Errorf("theme = %q", got)
	}
}
