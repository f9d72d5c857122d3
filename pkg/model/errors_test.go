package model

import (
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "Cycle 'latest' not found"}
	want := "NOT_FOUND: Cycle 'latest' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Cycle", "latest")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "Cycle 'latest' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Cycle 'latest' not found")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid workload",
		FieldError{Field: "tasks[0].computation", Message: "must be positive"},
		FieldError{Field: "tasks[1].compulsory[0]", Message: "unknown worker"},
	)
	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"validation", NewValidationError("bad"), ErrValidation},
		{"wrapped validation", fmt.Errorf("plan: %w", NewValidationError("bad")), ErrValidation},
		{"feasibility", fmt.Errorf("assign: %w", &FeasibilityError{Worker: "A1"}), ErrFeasibility},
		{"placement", &PlacementError{Worker: "A1", Identity: Identity{"1", "7"}}, ErrPlacement},
		{"other", fmt.Errorf("boom"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToAPIError(tt.err).Code; got != tt.want {
				t.Errorf("ToAPIError(%v).Code = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestPlacementError_Error(t *testing.T) {
	err := &PlacementError{
		Worker:        "A1",
		Identity:      Identity{ApplicationID: "2", TaskID: "1"},
		Instance:      3,
		EarliestStart: 31,
		LatestFinish:  41,
		Computation:   4,
	}
	want := "cannot place 2/1 instance 3 on worker A1: no gap of 4 in window [31,41) after feasibility passed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
