package scheduler

import "github.com/me/jamsched/pkg/model"

// RebaseRelease moves a periodic release offset across a cycle boundary of
// the given length: the new offset is the first release of the old sequence
// at or after the boundary, measured from the boundary.
func RebaseRelease(release, period, length int64) int64 {
	// A release at or past the boundary has not happened yet and keeps its
	// distance from the boundary. The ceiling form below would instead pull it
	// back by whole periods (17, 5, 10 gives 2 there, 7 here).
	if release >= length {
		return release - length
	}
	n := (length - release + period - 1) / period
	return n*period + release - length
}

// Rebase returns a copy of tasks with every periodic release offset moved to
// the next cycle. One-shot tasks are copied unchanged.
func Rebase(tasks []model.TaskSpec, length int64) []model.TaskSpec {
	out := make([]model.TaskSpec, len(tasks))
	copy(out, tasks)
	if length <= 0 {
		return out
	}
	for i := range out {
		if out[i].IsPeriodic() {
			out[i].Release = RebaseRelease(out[i].Release, out[i].Period, length)
		}
	}
	return out
}
