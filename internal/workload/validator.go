package workload

import (
	"fmt"
	"log/slog"

	"github.com/me/jamsched/internal/matching"
	"github.com/me/jamsched/pkg/model"
)

// Validator performs semantic validation on a parsed Workload.
type Validator struct {
	bands  model.PriorityBands
	logger *slog.Logger
}

// NewValidator creates a Validator checking hybrid priorities against bands.
func NewValidator(bands model.PriorityBands, logger *slog.Logger) *Validator {
	return &Validator{bands: bands, logger: logger.With("component", "validator")}
}

// Validate checks a workload with defaults already applied.
// Returns nil if valid, or an *model.APIError with FieldError details.
func (v *Validator) Validate(w *Workload) *model.APIError {
	var errs []model.FieldError

	errs = append(errs, v.validateCycle(w)...)
	errs = append(errs, v.validateWorkers(w)...)
	errs = append(errs, matching.CheckInput(w.Workers, w.Tasks)...)
	errs = append(errs, v.validateTasks(w)...)
	if w.Mode == model.ModeHybrid {
		errs = append(errs, v.validatePriorities(w)...)
	}

	if len(errs) == 0 {
		return nil
	}
	v.logger.Debug("workload rejected", "errors", len(errs))
	return model.NewValidationError("Workload validation failed", errs...)
}

func (v *Validator) validateCycle(w *Workload) []model.FieldError {
	var errs []model.FieldError
	if !w.Mode.IsValid() {
		return []model.FieldError{{
			Field:   "mode",
			Message: fmt.Sprintf("unknown mode %q; expected classic or hybrid", w.Mode),
		}}
	}
	switch w.Mode {
	case model.ModeClassic:
		if w.MaxHyperperiod <= 0 {
			errs = append(errs, model.FieldError{Field: "max_hyperperiod", Message: "classic mode requires a positive max_hyperperiod"})
		}
	case model.ModeHybrid:
		if w.Horizon <= 0 {
			errs = append(errs, model.FieldError{Field: "scheduling_duration", Message: "hybrid mode requires a positive scheduling_duration"})
		}
	}
	return errs
}

func (v *Validator) validateWorkers(w *Workload) []model.FieldError {
	var errs []model.FieldError
	if len(w.Workers) == 0 {
		errs = append(errs, model.FieldError{Field: "workers", Message: "at least one worker is required"})
	}
	seen := make(map[model.Worker]bool, len(w.Workers))
	for i, worker := range w.Workers {
		field := fmt.Sprintf("workers[%d]", i)
		if worker == "" {
			errs = append(errs, model.FieldError{Field: field, Message: "worker name is empty"})
			continue
		}
		if seen[worker] {
			errs = append(errs, model.FieldError{Field: field, Message: fmt.Sprintf("duplicate worker %q", worker)})
		}
		seen[worker] = true
	}
	return errs
}

func (v *Validator) validateTasks(w *Workload) []model.FieldError {
	var errs []model.FieldError
	for i := range w.Tasks {
		t := &w.Tasks[i]
		field := fmt.Sprintf("tasks[%d]", i)

		if t.ApplicationID == "" || t.TaskID == "" {
			errs = append(errs, model.FieldError{Field: field, Message: "application_id and task_id are required"})
		}
		if t.Class != "" && t.Class != model.ClassRT && t.Class != model.ClassSY {
			errs = append(errs, model.FieldError{
				Field:   field + ".class",
				Message: fmt.Sprintf("unknown class %q; expected rt or sy", t.Class),
			})
		}
		if t.Release < 0 {
			errs = append(errs, model.FieldError{Field: field + ".release", Message: "release offset must not be negative"})
		}
		if t.Period < 0 && !t.IsOneShot() {
			errs = append(errs, model.FieldError{
				Field:   field + ".period",
				Message: fmt.Sprintf("period must be positive or %d for a one-shot task", model.OneShot),
			})
		}
		if t.IsOneShot() && w.Mode == model.ModeClassic {
			errs = append(errs, model.FieldError{Field: field + ".period", Message: "one-shot tasks require hybrid mode"})
		}
		if t.Deadline < t.Computation && t.Computation > 0 {
			errs = append(errs, model.FieldError{
				Field:   field + ".deadline",
				Message: fmt.Sprintf("relative deadline %d is shorter than computation time %d", t.Deadline, t.Computation),
			})
		}
		if t.Priority.Compulsory < 0 || t.Priority.Optional < 0 {
			errs = append(errs, model.FieldError{Field: field + ".priority", Message: "priorities must not be negative"})
		}
		if len(t.Compulsory) == 0 && len(t.Optional) == 0 {
			errs = append(errs, model.FieldError{Field: field, Message: "task names no compulsory or optional worker"})
		}
		errs = append(errs, overlapping(field, t)...)
	}
	return errs
}

// overlapping reports workers listed twice by one task.
func overlapping(field string, t *model.TaskSpec) []model.FieldError {
	var errs []model.FieldError
	compulsory := make(map[model.Worker]bool, len(t.Compulsory))
	for j, w := range t.Compulsory {
		if compulsory[w] {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("%s.compulsory[%d]", field, j),
				Message: fmt.Sprintf("worker %q listed twice", w),
			})
		}
		compulsory[w] = true
	}
	optional := make(map[model.Worker]bool, len(t.Optional))
	for j, w := range t.Optional {
		switch {
		case compulsory[w]:
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("%s.optional[%d]", field, j),
				Message: fmt.Sprintf("worker %q is both compulsory and optional", w),
			})
		case optional[w]:
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("%s.optional[%d]", field, j),
				Message: fmt.Sprintf("worker %q listed twice", w),
			})
		}
		optional[w] = true
	}
	return errs
}

// validatePriorities checks that every weight a task can carry lies in the
// band of its tag kind. SY tasks use the synchronous band for both kinds.
func (v *Validator) validatePriorities(w *Workload) []model.FieldError {
	var errs []model.FieldError
	for i := range w.Tasks {
		t := &w.Tasks[i]
		field := fmt.Sprintf("tasks[%d].priority", i)

		compulsoryBand, optionalBand := v.bands.Compulsory, v.bands.Optional
		if t.ClassOrDefault() == model.ClassSY {
			compulsoryBand, optionalBand = v.bands.Synchronous, v.bands.Synchronous
		}
		if len(t.Compulsory) > 0 && !compulsoryBand.Contains(t.Priority.Compulsory) {
			errs = append(errs, model.FieldError{
				Field:   field + ".compulsory",
				Message: fmt.Sprintf("priority %d outside band [%d,%d]", t.Priority.Compulsory, compulsoryBand.Min, compulsoryBand.Max),
			})
		}
		if len(t.Optional) > 0 && !optionalBand.Contains(t.Priority.Optional) {
			errs = append(errs, model.FieldError{
				Field:   field + ".optional",
				Message: fmt.Sprintf("priority %d outside band [%d,%d]", t.Priority.Optional, optionalBand.Min, optionalBand.Max),
			})
		}
	}
	return errs
}
