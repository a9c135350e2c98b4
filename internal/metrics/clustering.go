package metrics

import "github.com/prometheus/client_golang/prometheus"

// Clustering run Prometheus metrics.
var (
	ClusteringRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedbackflow",
			Name:      "clustering_runs_total",
			Help:      "Total number of clustering runs",
		},
		[]string{"status"},
	)

	ClusteringRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedbackflow",
			Name:      "clustering_run_duration_seconds",
			Help:      "Clustering run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	ClusteringClusters = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "feedbackflow",
			Name:      "clustering_clusters",
			Help:      "Number of clusters produced by the last run",
		},
	)

	ClusteringOutliers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "feedbackflow",
			Name:      "clustering_outliers",
			Help:      "Number of outliers produced by the last run",
		},
	)
)

var clusteringMetricsRegistered bool

// RegisterClusteringMetrics registers Prometheus clustering metrics. Must be called once from main.
func RegisterClusteringMetrics() {
	if clusteringMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClusteringRunsTotal)
	prometheus.MustRegister(ClusteringRunDuration)
	prometheus.MustRegister(ClusteringClusters)
	prometheus.MustRegister(ClusteringOutliers)
	clusteringMetricsRegistered = true
}
