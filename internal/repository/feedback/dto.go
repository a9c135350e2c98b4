package feedback

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/objones25/FeedbackFlow/internal/domain"
	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
)

// buildItemFields converts a domain Item into a flat map[string]string for HSET.
func buildItemFields(it *domitem.Item) map[string]string {
	m := map[string]string{
		"text":     it.Text(),
		"__vector": vectorToBytes(it.Embedding()),
	}
	if s, ok := it.Sentiment(); ok {
		m["sent_label"] = string(s.Label)
		m["sent_score"] = strconv.FormatFloat(s.Score, 'f', -1, 64)
		m["sent_conf"] = strconv.FormatFloat(s.Confidence, 'f', -1, 64)
	}
	return m
}

// parseItemFields converts a flat hash map back into a domain Item.
func parseItemFields(id string, m map[string]string) domitem.Item {
	var sentiment domain.Sentiment
	scored := false

	if label, ok := m["sent_label"]; ok {
		score, _ := strconv.ParseFloat(m["sent_score"], 64)
		conf, _ := strconv.ParseFloat(m["sent_conf"], 64)
		sentiment = domain.Sentiment{Label: domain.SentimentLabel(label), Score: score, Confidence: conf}
		scored = true
	}

	return domitem.Reconstruct(id, m["text"], bytesToVector(m["__vector"]), sentiment, scored)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	if len(s) < 4 {
		return nil
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v
}

// clusterDTO is the JSON shape of a stored cluster.
type clusterDTO struct {
	ID         string    `json:"id"`
	MemberIDs  []string  `json:"member_ids"`
	Centroid   []float32 `json:"centroid"`
	Theme      string    `json:"theme"`
	Confidence float64   `json:"confidence"`
}

// resultDTO is the JSON shape of a stored clustering result.
type resultDTO struct {
	Clusters []clusterDTO `json:"clusters"`
	Outliers []string     `json:"outliers"`
}

func buildResultDTO(result domcluster.Result) resultDTO {
	clusters := result.Clusters()
	dto := resultDTO{
		Clusters: make([]clusterDTO, 0, len(clusters)),
		Outliers: result.Outliers(),
	}
	for _, c := range clusters {
		dto.Clusters = append(dto.Clusters, clusterDTO{
			ID:         c.ID(),
			MemberIDs:  c.MemberIDs(),
			Centroid:   c.Centroid(),
			Theme:      c.Theme(),
			Confidence: c.Confidence(),
		})
	}
	return dto
}

// parseResultJSON decodes a JSON.GET payload. RedisJSON returns a one-element
// array for the "$" path.
func parseResultJSON(raw []byte) (domcluster.Result, error) {
	var wrapped []resultDTO
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped) == 0 {
		// Plain object fallback for non-wrapped payloads.
		var dto resultDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return domcluster.Result{}, fmt.Errorf("parse result json: %w", err)
		}
		return dtoToResult(dto), nil
	}
	return dtoToResult(wrapped[0]), nil
}

func dtoToResult(dto resultDTO) domcluster.Result {
	clusters := make([]domcluster.Cluster, 0, len(dto.Clusters))
	for _, c := range dto.Clusters {
		clusters = append(clusters, domcluster.Reconstruct(c.ID, c.MemberIDs, c.Centroid, c.Theme, c.Confidence))
	}
	return domcluster.NewResult(clusters, dto.Outliers)
}
