package model

import (
	"errors"
	"fmt"
)

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation  ErrorCode = "VALIDATION_ERROR"
	ErrNotFound    ErrorCode = "NOT_FOUND"
	ErrFeasibility ErrorCode = "FEASIBILITY_EXHAUSTED"
	ErrPlacement   ErrorCode = "PLACEMENT_INVARIANT"
	ErrInternal    ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the scheduler API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// FeasibilityError is returned in classic mode when a worker stays above its
// utilization or hyperperiod bound with no task left to evict.
type FeasibilityError struct {
	Worker      Worker
	Utilization float64
	Hyperperiod int64
	Bound       int64
}

func (e *FeasibilityError) Error() string {
	return fmt.Sprintf("worker %s infeasible with no evictable task (utilization %.3f, hyperperiod %d, max hyperperiod %d)",
		e.Worker, e.Utilization, e.Hyperperiod, e.Bound)
}

// PlacementError is returned in classic mode when an instance the
// feasibility pass accepted cannot be placed within its window. It means the
// feasibility test and the packer disagree.
type PlacementError struct {
	Worker        Worker
	Identity      Identity
	Instance      int
	EarliestStart int64
	LatestFinish  int64
	Computation   int64
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("cannot place %s instance %d on worker %s: no gap of %d in window [%d,%d) after feasibility passed",
		e.Identity, e.Instance, e.Worker, e.Computation, e.EarliestStart, e.LatestFinish)
}

// ToAPIError maps any scheduling error to its API representation.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var feasErr *FeasibilityError
	if errors.As(err, &feasErr) {
		return &APIError{Code: ErrFeasibility, Message: err.Error()}
	}
	var placeErr *PlacementError
	if errors.As(err, &placeErr) {
		return &APIError{Code: ErrPlacement, Message: err.Error()}
	}
	return &APIError{Code: ErrInternal, Message: err.Error()}
}
