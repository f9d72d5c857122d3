// Package packer lays one worker's assigned task instances onto a timeline.
//
// The first task in order is laid down back to back from its releases; every
// later instance goes into the first gap that fits its window. Classic mode
// orders tasks by earliest deadline and produces a gap-free timeline padded
// with slack. Hybrid mode orders tasks by priority weight and
// defers instances that do not fit their window to an overflow queue.
package packer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/me/jamsched/internal/overflow"
	"github.com/me/jamsched/internal/timeline"
	"github.com/me/jamsched/pkg/model"
)

// WindowFunc returns the latest finish of the instance of t released at
// earliest.
type WindowFunc func(earliest int64, t *model.TaskSpec) int64

// DeadlineWindow closes an instance's window one relative deadline after its
// release.
func DeadlineWindow(earliest int64, t *model.TaskSpec) int64 {
	return earliest + t.Deadline
}

// PeriodWindow closes an instance's window at the next release. One-shot
// tasks fall back to their relative deadline.
func PeriodWindow(earliest int64, t *model.TaskSpec) int64 {
	if !t.IsPeriodic() {
		return DeadlineWindow(earliest, t)
	}
	return earliest + t.Period
}

// Job is one task assigned to the worker being packed.
type Job struct {
	Task *model.TaskSpec
	Tag  model.Tag
}

// Packer builds per-worker timelines.
type Packer struct {
	window WindowFunc
}

// New creates a Packer. A nil window selects DeadlineWindow.
func New(window WindowFunc) *Packer {
	if window == nil {
		window = DeadlineWindow
	}
	return &Packer{window: window}
}

// Pack places every instance of jobs released within [0, horizon) on worker.
// The returned queue is empty in classic mode, where an instance that does
// not fit is reported as a *model.PlacementError.
func (p *Packer) Pack(worker model.Worker, jobs []Job, horizon int64, mode model.Mode) (*timeline.Timeline, *overflow.Queue, error) {
	tl := timeline.New(worker)
	q := overflow.New()

	for i, job := range order(jobs, mode) {
		t := job.Task
		if i == 0 {
			if err := lay(tl, t, horizon); err != nil {
				return nil, nil, err
			}
			continue
		}
		cur := tl.Cursor()
		for k := range instances(t, horizon) {
			earliest := earliestStart(t, k)
			latestFinish := p.window(earliest, t)

			placed, err := fit(cur, model.ScheduleEntry{
				ApplicationID: t.ApplicationID,
				TaskID:        t.TaskID,
				Instance:      k,
			}, earliest, latestFinish, t.Computation)
			if err != nil {
				return nil, nil, err
			}
			if placed {
				continue
			}

			if mode == model.ModeClassic {
				return nil, nil, &model.PlacementError{
					Worker:        worker,
					Identity:      t.Identity,
					Instance:      k,
					EarliestStart: earliest,
					LatestFinish:  latestFinish,
					Computation:   t.Computation,
				}
			}
			q.Push(model.OverflowEntry{
				Identity:      t.Identity,
				Instance:      k,
				EarliestStart: earliest,
				Computation:   t.Computation,
				Deadline:      t.Deadline,
				Priority:      job.Tag.Weight,
			})
		}
	}

	if mode == model.ModeClassic {
		tl.FillSlack(horizon)
	}
	if err := tl.Check(); err != nil {
		return nil, nil, fmt.Errorf("worker %s timeline: %w", worker, err)
	}
	return tl, q, nil
}

// order returns jobs sorted by ascending absolute deadline (classic) or
// descending weight (hybrid). Equal keys keep their input order.
func order(jobs []Job, mode model.Mode) []Job {
	sorted := slices.Clone(jobs)
	if mode == model.ModeHybrid {
		slices.SortStableFunc(sorted, func(a, b Job) int {
			return cmp.Compare(b.Tag.Weight, a.Tag.Weight)
		})
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b Job) int {
		return cmp.Compare(a.Task.AbsoluteDeadline(), b.Task.AbsoluteDeadline())
	})
	return sorted
}

// instances returns how many instances of t are released within the horizon.
func instances(t *model.TaskSpec, horizon int64) int {
	if !t.IsPeriodic() {
		return 1
	}
	if horizon <= 0 {
		return 0
	}
	return int(horizon / t.Period)
}

// earliestStart returns the release of instance k of t.
func earliestStart(t *model.TaskSpec, k int) int64 {
	return t.Release + int64(k)*max(t.Period, 0)
}

// lay places every instance of the first task on an empty timeline back to
// back: each starts at its release or at the previous instance's finish,
// whichever is later. Windows are not checked.
func lay(tl *timeline.Timeline, t *model.TaskSpec, horizon int64) error {
	cur := tl.Cursor()
	var finish int64
	for k := range instances(t, horizon) {
		start := max(earliestStart(t, k), finish)
		finish = start + t.Computation
		err := cur.Place(model.ScheduleEntry{
			ApplicationID: t.ApplicationID,
			TaskID:        t.TaskID,
			Instance:      k,
			Start:         start,
			Finish:        finish,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// fit walks the cursor forward to the first gap whose intersection with
// [earliest, latestFinish) holds computation units and places the instance at
// the start of that intersection. The cursor is left where the search stopped.
func fit(cur *timeline.Cursor, e model.ScheduleEntry, earliest, latestFinish, computation int64) (bool, error) {
	latestStart := latestFinish - computation
	cur.SeekTo(earliest)
	for {
		gapStart, gapEnd := cur.Gap()
		lo, hi := max(gapStart, earliest), min(gapEnd, latestFinish)
		if hi-lo >= computation {
			e.Start, e.Finish = lo, lo+computation
			return true, cur.Place(e)
		}
		if gapStart > latestStart || !cur.Next() {
			return false, nil
		}
	}
}
