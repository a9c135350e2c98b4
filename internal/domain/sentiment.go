package domain

import "context"

// SentimentLabel is the polarity class assigned to a text.
type SentimentLabel string

// Sentiment polarity classes.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Sentiment is the result of scoring one text.
// Score is the signed polarity in [-1,1], Confidence the classifier certainty in [0,1].
type Sentiment struct {
	Label      SentimentLabel
	Score      float64
	Confidence float64
}

// SentimentScorer scores the polarity of a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (Sentiment, error)
}

// Valid reports whether the label is one of the known polarity classes.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}
