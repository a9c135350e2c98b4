package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem signals an item that fails structural validation.
	ErrInvalidItem = errors.New("invalid item")
	// ErrDimensionMismatch signals embeddings of differing length compared directly.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidThreshold signals a similarity threshold outside [0,1].
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrEmptyInput signals an empty item batch.
	ErrEmptyInput = errors.New("empty input")
	// ErrTooManyItems signals a batch above the configured maximum.
	ErrTooManyItems = errors.New("too many items")
	// ErrInvalidArgument signals an out-of-range per-operation parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyCluster signals a merge on a cluster with no members.
	ErrEmptyCluster = errors.New("empty cluster")
	// ErrMissingMember signals a cluster member that cannot be resolved in the item pool.
	ErrMissingMember = errors.New("missing cluster member")

	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProviderError signals an inference provider failure.
	ErrProviderError = errors.New("inference provider error")
)

// InvalidItemError wraps ErrInvalidItem with the index of the offending item.
type InvalidItemError struct {
	Index  int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("%s at index %d: %s", ErrInvalidItem.Error(), e.Index, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// NewInvalidItem creates an invalid item error for the given input index.
func NewInvalidItem(index int, reason string) error {
	return &InvalidItemError{Index: index, Reason: reason}
}
