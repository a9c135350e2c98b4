package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domcluster "github.com/objones25/FeedbackFlow/internal/domain/cluster"
	domitem "github.com/objones25/FeedbackFlow/internal/domain/item"
	logpkg "github.com/objones25/FeedbackFlow/internal/logger"
	feedbackuc "github.com/objones25/FeedbackFlow/internal/usecase/feedback"
	healthuc "github.com/objones25/FeedbackFlow/internal/usecase/health"
)

const maxIngestTexts = 100

// Server is the HTTP API fronting the feedback and health services.
type Server struct {
	feedback *feedbackuc.Service
	health   *healthuc.Service
}

// NewServer creates an HTTP API server.
func NewServer(feedback *feedbackuc.Service, health *healthuc.Service) *Server {
	return &Server{feedback: feedback, health: health}
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", s.IngestFeedback)
			r.Get("/{id}", s.GetFeedbackItem)
			r.Delete("/{id}", s.DeleteFeedbackItem)
		})
		r.Route("/clusters", func(r chi.Router) {
			r.Get("/", s.LatestClusters)
			r.Post("/run", s.RunClustering)
			r.Post("/preview", s.PreviewClustering)
			r.Post("/merge", s.MergeClusters)
		})
		r.Post("/similar", s.FindSimilar)
		r.Get("/threshold/suggest", s.SuggestThreshold)
		r.Get("/quality", s.Quality)
		r.Get("/trends", s.Trends)
		r.Post("/analyze", s.Analyze)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Request / response DTOs ---

type ingestRequest struct {
	Texts []string `json:"texts"`
}

type itemDTO struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Sentiment *sentimentDTO `json:"sentiment,omitempty"`
}

type sentimentDTO struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

type ingestResponse struct {
	Items []itemDTO `json:"items"`
	Count int       `json:"count"`
}

type clusterDTO struct {
	ID         string   `json:"id"`
	Theme      string   `json:"theme"`
	Confidence float64  `json:"confidence"`
	Size       int      `json:"size"`
	MemberIDs  []string `json:"member_ids"`
}

type resultDTO struct {
	Clusters  []clusterDTO `json:"clusters"`
	Outliers  []string     `json:"outliers"`
	LastRunAt string       `json:"last_run_at,omitempty"`
}

type thresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

type mergeRequest struct {
	ClusterID1 string `json:"cluster_id_1"`
	ClusterID2 string `json:"cluster_id_2"`
}

type similarRequest struct {
	Text       string  `json:"text"`
	Threshold  float64 `json:"threshold"`
	MaxResults int     `json:"max_results"`
}

type neighborDTO struct {
	Item       itemDTO `json:"item"`
	Similarity float64 `json:"similarity"`
}

type similarResponse struct {
	Neighbors []neighborDTO `json:"neighbors"`
}

type thresholdResponse struct {
	SuggestedThreshold float64 `json:"suggested_threshold"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analysisDTO struct {
	Category    string   `json:"category"`
	Urgency     string   `json:"urgency"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

// IngestFeedback handles POST /v1/feedback.
func (s *Server) IngestFeedback(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Texts) == 0 || len(req.Texts) > maxIngestTexts {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"texts count must be between 1 and 100")
		return
	}

	items, err := s.feedback.Ingest(r.Context(), req.Texts)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	dtos := make([]itemDTO, len(items))
	for i := range items {
		dtos[i] = itemToDTO(items[i])
	}
	writeJSON(w, http.StatusCreated, ingestResponse{Items: dtos, Count: len(dtos)})
}

// RunClustering handles POST /v1/clusters/run.
func (s *Server) RunClustering(w http.ResponseWriter, r *http.Request) {
	threshold, ok := s.decodeThreshold(w, r)
	if !ok {
		return
	}

	result, err := s.feedback.Regroup(r.Context(), threshold)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToDTO(result))
}

// PreviewClustering handles POST /v1/clusters/preview.
func (s *Server) PreviewClustering(w http.ResponseWriter, r *http.Request) {
	threshold, ok := s.decodeThreshold(w, r)
	if !ok {
		return
	}

	result, err := s.feedback.Preview(r.Context(), threshold)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToDTO(result))
}

// decodeThreshold reads an optional {"threshold": x} body. An empty body means
// the configured default.
func (s *Server) decodeThreshold(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return 0, false
	}
	return req.Threshold, true
}

// LatestClusters handles GET /v1/clusters. The optional limit query parameter
// caps the number of returned clusters.
func (s *Server) LatestClusters(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid limit parameter: "+err.Error())
		return
	}

	result, err := s.feedback.Latest(r.Context())
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	dto := resultToDTO(result)
	if limit > 0 && limit < len(dto.Clusters) {
		dto.Clusters = dto.Clusters[:limit]
	}
	// До первого прогона кластеризации метки времени нет
	if at, err := s.feedback.LastRunAt(r.Context()); err == nil {
		dto.LastRunAt = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetFeedbackItem handles GET /v1/feedback/{id}.
func (s *Server) GetFeedbackItem(w http.ResponseWriter, r *http.Request) {
	it, err := s.feedback.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(it))
}

// DeleteFeedbackItem handles DELETE /v1/feedback/{id}.
func (s *Server) DeleteFeedbackItem(w http.ResponseWriter, r *http.Request) {
	if err := s.feedback.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergeClusters handles POST /v1/clusters/merge.
func (s *Server) MergeClusters(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ClusterID1 == "" || req.ClusterID2 == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"cluster_id_1 and cluster_id_2 are required")
		return
	}

	merged, err := s.feedback.MergeClusters(r.Context(), req.ClusterID1, req.ClusterID2)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, clusterToDTO(merged))
}

// FindSimilar handles POST /v1/similar.
func (s *Server) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.MaxResults == 0 {
		req.MaxResults = 10
	}

	neighbors, err := s.feedback.Similar(r.Context(), req.Text, req.Threshold, req.MaxResults)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	dtos := make([]neighborDTO, len(neighbors))
	for i, n := range neighbors {
		dtos[i] = neighborDTO{Item: itemToDTO(n.Item), Similarity: n.Similarity}
	}
	writeJSON(w, http.StatusOK, similarResponse{Neighbors: dtos})
}

// SuggestThreshold handles GET /v1/threshold/suggest.
func (s *Server) SuggestThreshold(w http.ResponseWriter, r *http.Request) {
	suggested, err := s.feedback.SuggestThreshold(r.Context())
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, thresholdResponse{SuggestedThreshold: suggested})
}

// Quality handles GET /v1/quality.
func (s *Server) Quality(w http.ResponseWriter, r *http.Request) {
	quality, err := s.feedback.Evaluate(r.Context())
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, quality)
}

// Trends handles GET /v1/trends.
func (s *Server) Trends(w http.ResponseWriter, r *http.Request) {
	trends, err := s.feedback.Trends(r.Context())
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	analysis, err := s.feedback.Analyze(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisDTO{
		Category:    analysis.Category,
		Urgency:     analysis.Urgency,
		Themes:      analysis.Themes,
		ActionItems: analysis.ActionItems,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(r *http.Request, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, ss := range sentinelStatuses {
		if errors.Is(err, ss.sentinel) {
			writeError(w, ss.status, ss.code, msg)
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// --- Converters ---

func itemToDTO(it domitem.Item) itemDTO {
	dto := itemDTO{ID: it.ID(), Text: it.Text()}
	if sent, ok := it.Sentiment(); ok {
		dto.Sentiment = &sentimentDTO{
			Label:      string(sent.Label),
			Score:      sent.Score,
			Confidence: sent.Confidence,
		}
	}
	return dto
}

func clusterToDTO(c domcluster.Cluster) clusterDTO {
	return clusterDTO{
		ID:         c.ID(),
		Theme:      c.Theme(),
		Confidence: c.Confidence(),
		Size:       c.Size(),
		MemberIDs:  c.MemberIDs(),
	}
}

func resultToDTO(result domcluster.Result) resultDTO {
	clusters := result.Clusters()
	dto := resultDTO{
		Clusters: make([]clusterDTO, len(clusters)),
		Outliers: result.Outliers(),
	}
	for i := range clusters {
		dto.Clusters[i] = clusterToDTO(clusters[i])
	}
	if dto.Outliers == nil {
		dto.Outliers = []string{}
	}
	return dto
}
