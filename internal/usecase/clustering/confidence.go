package clustering

import "github.com/objones25/FeedbackFlow/internal/domain/item"

// Size bonus: 0.01 per member, capped at 0.1.
const (
	sizeBonusPerMember = 0.01
	sizeBonusCap       = 0.1
)

// Confidence scores cluster cohesion: the mean member-to-centroid similarity
// clamped to [0,1], plus a size bonus, capped at 1. An empty member list
// scores 0.
func Confidence(items []item.Item, centroid []float32) float64 {
	if len(items) == 0 {
		return 0
	}

	var total float64
	for i := range items {
		sim, err := CosineSimilarity(items[i].Embedding(), centroid)
		if err != nil {
			sim = 0
		}
		total += sim
	}
	mean := clamp(total/float64(len(items)), 0, 1)

	bonus := float64(len(items)) * sizeBonusPerMember
	if bonus > sizeBonusCap {
		bonus = sizeBonusCap
	}

	score := mean + bonus
	if score > 1 {
		score = 1
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
