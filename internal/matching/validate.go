package matching

import (
	"fmt"

	"github.com/me/jamsched/pkg/model"
)

// CheckInput validates the parts of a cycle's input the assigner depends on:
// every referenced worker exists, computation times are positive, periods are
// non-zero and identities are unique.
func CheckInput(workers []model.Worker, tasks []model.TaskSpec) []model.FieldError {
	var errs []model.FieldError

	known := model.WorkerIndex(workers)
	seen := make(map[model.Identity]int, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		field := fmt.Sprintf("tasks[%d]", i)

		if prev, ok := seen[t.Identity]; ok {
			errs = append(errs, model.FieldError{
				Field:   field,
				Message: fmt.Sprintf("duplicate identity %s (also tasks[%d])", t.Identity, prev),
			})
		} else {
			seen[t.Identity] = i
		}
		if t.Computation <= 0 {
			errs = append(errs, model.FieldError{
				Field:   field + ".computation",
				Message: fmt.Sprintf("computation time must be positive, got %d", t.Computation),
			})
		}
		if t.Period == 0 {
			errs = append(errs, model.FieldError{
				Field:   field + ".period",
				Message: fmt.Sprintf("period must be positive or %d for a one-shot task", model.OneShot),
			})
		}
		for j, w := range t.Compulsory {
			if _, ok := known[w]; !ok {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("%s.compulsory[%d]", field, j),
					Message: fmt.Sprintf("unknown worker %q", w),
				})
			}
		}
		for j, w := range t.Optional {
			if _, ok := known[w]; !ok {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("%s.optional[%d]", field, j),
					Message: fmt.Sprintf("unknown worker %q", w),
				})
			}
		}
	}
	return errs
}
