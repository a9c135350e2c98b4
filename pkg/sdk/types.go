package feedbackflow

import (
	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	feedbackuc "github.com/objones25/FeedbackFlow/internal/usecase/feedback"
)

// SentimentLabel is the polarity class assigned to a text.
type SentimentLabel string

// Sentiment polarity classes.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Sentiment is the polarity of one text. Score is in [-1,1],
// Confidence in [0,1].
type Sentiment struct {
	Label      SentimentLabel
	Score      float64
	Confidence float64
}

// Item is a stored feedback sentence. Sentiment is nil when the item
// was ingested without a sentiment provider.
type Item struct {
	ID        string
	Text      string
	Sentiment *Sentiment
}

// Cluster is one group of a clustering result.
type Cluster struct {
	ID         string
	MemberIDs  []string
	Size       int
	Theme      string
	Confidence float64
}

// Result is a completed clustering pass over the stored items.
type Result struct {
	Clusters []Cluster
	Outliers []string
}

// Neighbor is a single similarity hit.
type Neighbor struct {
	ID         string
	Text       string
	Similarity float64
}

// Quality summarizes how well a clustering separates the data.
type Quality struct {
	SilhouetteScore      float64
	IntraClusterDistance float64
	InterClusterDistance float64
	ClusterSizes         []int
}

// Trend is the sentiment breakdown of one cluster in the latest result.
type Trend struct {
	ClusterID string
	Theme     string
	Size      int
	Positive  int
	Negative  int
	Neutral   int
	Unscored  int
	AvgScore  float64
}

// Analysis is the structured breakdown of a feedback text.
type Analysis struct {
	Category    string
	Urgency     string // low, medium, high
	Themes      []string
	ActionItems []string
}

func fromInternalItem(it domitem.Item) Item {
	out := Item{ID: it.ID(), Text: it.Text()}
	if sent, ok := it.Sentiment(); ok {
		out.Sentiment = &Sentiment{
			Label:      SentimentLabel(sent.Label),
			Score:      sent.Score,
			Confidence: sent.Confidence,
		}
	}
	return out
}

func fromInternalCluster(c domcluster.Cluster) Cluster {
	return Cluster{
		ID:         c.ID(),
		MemberIDs:  c.MemberIDs(),
		Size:       c.Size(),
		Theme:      c.Theme(),
		Confidence: c.Confidence(),
	}
}

func fromInternalResult(r domcluster.Result) Result {
	clusters := r.Clusters()
	out := Result{
		Clusters: make([]Cluster, 0, len(clusters)),
		Outliers: r.Outliers(),
	}
	for _, c := range clusters {
		out.Clusters = append(out.Clusters, fromInternalCluster(c))
	}
	if out.Outliers == nil {
		out.Outliers = []string{}
	}
	return out
}

func fromInternalTrend(t feedbackuc.ClusterTrend) Trend {
	return Trend{
		ClusterID: t.ClusterID,
		Theme:     t.Theme,
		Size:      t.Size,
		Positive:  t.Positive,
		Negative:  t.Negative,
		Neutral:   t.Neutral,
		Unscored:  t.Unscored,
		AvgScore:  t.AvgScore,
	}
}

func fromInternalAnalysis(a domain.Analysis) Analysis {
	return Analysis{
		Category:    a.Category,
		Urgency:     a.Urgency,
		Themes:      a.Themes,
		ActionItems: a.ActionItems,
	}
}
