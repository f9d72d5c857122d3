// Package timeline holds the ordered, non-overlapping interval sequence of
// one worker.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/me/jamsched/pkg/model"
)

// Unbounded is the end of the gap after the last entry.
const Unbounded int64 = math.MaxInt64

// ErrOverlap is returned when an insertion would intersect an existing entry.
var ErrOverlap = errors.New("interval overlaps an existing entry")

// Timeline is a sorted slice of [Start, Finish) entries for one worker.
// Entries never overlap.
type Timeline struct {
	worker  model.Worker
	entries []model.ScheduleEntry
}

// New creates an empty timeline for w.
func New(w model.Worker) *Timeline {
	return &Timeline{worker: w}
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in start order.
func (t *Timeline) Entries() []model.ScheduleEntry {
	return slices.Clone(t.entries)
}

// Gap returns the free interval after entry i. Index -1 is the gap before the
// first entry, which starts at 0. The gap after the last entry ends at
// Unbounded.
func (t *Timeline) Gap(i int) (start, end int64) {
	if i >= 0 {
		start = t.entries[i].Finish
	}
	end = Unbounded
	if i+1 < len(t.entries) {
		end = t.entries[i+1].Start
	}
	return start, end
}

// gapBefore returns the index of the entry whose trailing gap contains the
// instant at, or the last entry starting at or before it.
func (t *Timeline) gapBefore(at int64) int {
	// first entry starting strictly after at
	k, _ := slices.BinarySearchFunc(t.entries, at, func(e model.ScheduleEntry, v int64) int {
		if e.Start <= v {
			return -1
		}
		return 1
	})
	return k - 1
}

// Insert adds e at its sorted position. The worker field is overwritten with
// the timeline's worker.
func (t *Timeline) Insert(e model.ScheduleEntry) error {
	if e.Finish <= e.Start {
		return fmt.Errorf("insert %s: finish must be after start", e)
	}
	i := t.gapBefore(e.Start)
	start, end := t.Gap(i)
	if e.Start < start || e.Finish > end {
		return fmt.Errorf("insert %s: %w", e, ErrOverlap)
	}
	t.insertAt(i+1, e)
	return nil
}

func (t *Timeline) insertAt(pos int, e model.ScheduleEntry) {
	e.Worker = t.worker
	t.entries = slices.Insert(t.entries, pos, e)
}

// Busy sums the durations of non-slack entries.
func (t *Timeline) Busy() int64 {
	var busy int64
	for _, e := range t.entries {
		if !e.Slack {
			busy += e.Duration()
		}
	}
	return busy
}

// FillSlack inserts a slack entry into every gap within [0, horizon). Entries
// that run past the horizon are kept as they are.
func (t *Timeline) FillSlack(horizon int64) {
	filled := make([]model.ScheduleEntry, 0, 2*len(t.entries)+1)
	var cursor int64
	for _, e := range t.entries {
		if e.Start > cursor && cursor < horizon {
			filled = append(filled, model.SlackEntry(t.worker, cursor, min(e.Start, horizon)))
		}
		filled = append(filled, e)
		cursor = e.Finish
	}
	if cursor < horizon {
		filled = append(filled, model.SlackEntry(t.worker, cursor, horizon))
	}
	t.entries = filled
}

// Check verifies that entries are sorted by start, non-empty and pairwise
// non-overlapping.
func (t *Timeline) Check() error {
	for i, e := range t.entries {
		if e.Finish <= e.Start {
			return fmt.Errorf("entry %d %s is empty", i, e)
		}
		if i > 0 && t.entries[i-1].Finish > e.Start {
			return fmt.Errorf("entry %d %s overlaps %s: %w", i, e, t.entries[i-1], ErrOverlap)
		}
	}
	return nil
}

// Schedule snapshots the timeline as a worker schedule.
func (t *Timeline) Schedule(horizon int64) model.WorkerSchedule {
	entries := t.Entries()
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	return model.WorkerSchedule{Worker: t.worker, Horizon: horizon, Entries: entries}
}

// Cursor returns a forward-only cursor positioned before the first entry.
func (t *Timeline) Cursor() *Cursor {
	return &Cursor{tl: t, idx: -1}
}

// Cursor walks the gaps of a timeline from left to right. It never moves
// backwards; insertions through the cursor land in the current gap and move
// the cursor onto the inserted entry.
type Cursor struct {
	tl  *Timeline
	idx int
}

// Index returns the entry whose trailing gap the cursor is on, or -1.
func (c *Cursor) Index() int {
	return c.idx
}

// Gap returns the free interval at the cursor.
func (c *Cursor) Gap() (start, end int64) {
	return c.tl.Gap(c.idx)
}

// Next moves to the following gap. It returns false when the cursor is already
// on the trailing gap.
func (c *Cursor) Next() bool {
	if c.idx+1 >= len(c.tl.entries) {
		return false
	}
	c.idx++
	return true
}

// SeekTo moves forward to the first gap that ends after at. It uses binary
// search and leaves the cursor unchanged when that gap lies behind it.
func (c *Cursor) SeekTo(at int64) {
	c.idx = max(c.idx, c.tl.gapBefore(at))
}

// Place inserts [start, start+length) into the gap at the cursor.
func (c *Cursor) Place(e model.ScheduleEntry) error {
	start, end := c.Gap()
	if e.Finish <= e.Start {
		return fmt.Errorf("place %s: finish must be after start", e)
	}
	if e.Start < start || e.Finish > end {
		return fmt.Errorf("place %s in gap [%d,%d): %w", e, start, end, ErrOverlap)
	}
	c.idx++
	c.tl.insertAt(c.idx, e)
	return nil
}
