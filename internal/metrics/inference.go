package metrics

import "github.com/prometheus/client_golang/prometheus"

// Inference provider Prometheus metrics, shared by the embedding,
// sentiment and analysis transports.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedbackflow",
			Name:      "inference_requests_total",
			Help:      "Total number of inference API requests",
		},
		[]string{"kind", "model", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedbackflow",
			Name:      "inference_request_duration_seconds",
			Help:      "Inference API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind", "model"},
	)

	InferenceTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedbackflow",
			Name:      "inference_tokens_total",
			Help:      "Total inference tokens consumed",
		},
		[]string{"kind", "model", "type"},
	)

	InferenceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedbackflow",
			Name:      "inference_errors_total",
			Help:      "Total inference errors",
		},
		[]string{"kind", "model", "error_type"},
	)
)

var inferenceMetricsRegistered bool

// RegisterInferenceMetrics registers Prometheus inference metrics. Must be called once from main.
func RegisterInferenceMetrics() {
	if inferenceMetricsRegistered {
		return
	}
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(InferenceTokensTotal)
	prometheus.MustRegister(InferenceErrorsTotal)
	inferenceMetricsRegistered = true
}
