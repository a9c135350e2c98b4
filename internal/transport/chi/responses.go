package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/objones25/FeedbackFlow/internal/domain"
)

// ErrorCode is the machine-readable error code returned to API clients.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeProviderError    ErrorCode = "provider_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelStatus maps a domain sentinel to its HTTP status and error code.
type sentinelStatus struct {
	sentinel error
	status   int
	code     ErrorCode
}

var sentinelStatuses = []sentinelStatus{
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrInvalidItem, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrDimensionMismatch, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidThreshold, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrEmptyInput, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrTooManyItems, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidArgument, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrEmptyCluster, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrMissingMember, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrProviderError, http.StatusBadGateway, CodeProviderError},
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range sentinelStatuses {
		if errors.Is(err, s.sentinel) {
			return s.sentinel.Error()
		}
	}
	return "internal error"
}
