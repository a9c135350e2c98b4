package feedbackflow

import "github.com/objones25/FeedbackFlow/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidItem       = domain.ErrInvalidItem
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrInvalidThreshold  = domain.ErrInvalidThreshold
	ErrEmptyInput        = domain.ErrEmptyInput
	ErrTooManyItems      = domain.ErrTooManyItems
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrEmptyCluster      = domain.ErrEmptyCluster
	ErrMissingMember     = domain.ErrMissingMember
	ErrNotFound          = domain.ErrNotFound
	ErrProviderError     = domain.ErrProviderError
)
