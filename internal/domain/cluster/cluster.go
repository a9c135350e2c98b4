// Package cluster holds the feedback group aggregate produced by the
// clustering engine and the result of one clustering run.
package cluster

import "fmt"

// Cluster is a group of semantically similar items (immutable value object).
// Member order is arrival order; the centroid is the running mean of member embeddings.
type Cluster struct {
	id         string
	memberIDs  []string
	centroid   []float32
	theme      string
	confidence float64
}

// New validates and creates a Cluster.
func New(id string, memberIDs []string, centroid []float32, theme string, confidence float64) (Cluster, error) {
	if id == "" {
		return Cluster{}, fmt.Errorf("cluster ID is required")
	}
	if len(memberIDs) == 0 {
		return Cluster{}, fmt.Errorf("cluster must have at least one member")
	}
	if len(centroid) == 0 {
		return Cluster{}, fmt.Errorf("centroid is required")
	}
	return Reconstruct(id, memberIDs, centroid, theme, confidence), nil
}

// Reconstruct creates a Cluster without validation (storage hydration).
// Slices are copied so the aggregate never aliases caller memory.
func Reconstruct(id string, memberIDs []string, centroid []float32, theme string, confidence float64) Cluster {
	members := make([]string, len(memberIDs))
	copy(members, memberIDs)
	cent := make([]float32, len(centroid))
	copy(cent, centroid)
	return Cluster{id: id, memberIDs: members, centroid: cent, theme: theme, confidence: confidence}
}

// ID returns the opaque cluster identifier.
func (c *Cluster) ID() string { return c.id }

// MemberIDs returns the member item ids in arrival order.
func (c *Cluster) MemberIDs() []string {
	out := make([]string, len(c.memberIDs))
	copy(out, c.memberIDs)
	return out
}

// Size returns the member count.
func (c *Cluster) Size() int { return len(c.memberIDs) }

// Centroid returns a copy of the centroid vector.
func (c *Cluster) Centroid() []float32 {
	out := make([]float32, len(c.centroid))
	copy(out, c.centroid)
	return out
}

// Theme returns the human-readable label derived from member texts.
func (c *Cluster) Theme() string { return c.theme }

// Confidence returns the cohesion score in [0,1].
func (c *Cluster) Confidence() float64 { return c.confidence }

// Result is the output of one clustering run: kept clusters ordered
// largest-first and the ids of items that never reached a qualifying cluster.
type Result struct {
	clusters []Cluster
	outliers []string
}

// NewResult creates a clustering result.
func NewResult(clusters []Cluster, outliers []string) Result {
	cs := make([]Cluster, len(clusters))
	copy(cs, clusters)
	out := make([]string, len(outliers))
	copy(out, outliers)
	return Result{clusters: cs, outliers: out}
}

// Clusters returns the kept clusters, largest-first.
func (r *Result) Clusters() []Cluster {
	out := make([]Cluster, len(r.clusters))
	copy(out, r.clusters)
	return out
}

// Outliers returns the outlier item ids.
func (r *Result) Outliers() []string {
	out := make([]string, len(r.outliers))
	copy(out, r.outliers)
	return out
}

// ClusterByID returns the cluster with the given id, if present.
func (r *Result) ClusterByID(id string) (Cluster, bool) {
	for _, c := range r.clusters {
		if c.id == id {
			return c, true
		}
	}
	return Cluster{}, false
}
