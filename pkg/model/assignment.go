package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is the assignment of one task on one worker. In classic mode only the
// kind is meaningful; in hybrid mode Weight carries the kind-matched priority.
type Tag struct {
	Kind   TagKind `json:"kind"`
	Weight int     `json:"weight,omitempty"`
}

// Assigned reports whether the tag schedules the task on the worker.
func (t Tag) Assigned() bool {
	return t.Kind != TagNone
}

// Assignment is one non-None cell of the matrix.
type Assignment struct {
	Task     int      `json:"task"`
	Identity Identity `json:"identity"`
	Worker   Worker   `json:"worker"`
	Tag      Tag      `json:"tag"`
}

type cell struct {
	task, worker int
}

// AssignmentMatrix maps (task, worker) pairs to tags. It is stored sparsely:
// only non-None cells are kept. Rows follow the task order and columns the
// worker order they were created with.
type AssignmentMatrix struct {
	workers []Worker
	tasks   []Identity
	tags    map[cell]Tag
}

// NewAssignmentMatrix creates an empty matrix over the given rows and columns.
func NewAssignmentMatrix(workers []Worker, tasks []Identity) *AssignmentMatrix {
	return &AssignmentMatrix{
		workers: append([]Worker(nil), workers...),
		tasks:   append([]Identity(nil), tasks...),
		tags:    make(map[cell]Tag),
	}
}

// Workers returns the column labels.
func (m *AssignmentMatrix) Workers() []Worker {
	return append([]Worker(nil), m.workers...)
}

// Tasks returns the row labels.
func (m *AssignmentMatrix) Tasks() []Identity {
	return append([]Identity(nil), m.tasks...)
}

// Tag returns the tag of a cell; unknown cells are TagNone.
func (m *AssignmentMatrix) Tag(task, worker int) Tag {
	return m.tags[cell{task, worker}]
}

// Set stores tag on a cell. Setting a TagNone tag removes the cell.
func (m *AssignmentMatrix) Set(task, worker int, tag Tag) {
	if task < 0 || task >= len(m.tasks) || worker < 0 || worker >= len(m.workers) {
		panic(fmt.Sprintf("assignment cell (%d, %d) out of range", task, worker))
	}
	if !tag.Assigned() {
		delete(m.tags, cell{task, worker})
		return
	}
	m.tags[cell{task, worker}] = tag
}

// Clear resets a cell to TagNone and returns its previous tag.
func (m *AssignmentMatrix) Clear(task, worker int) Tag {
	prev := m.tags[cell{task, worker}]
	delete(m.tags, cell{task, worker})
	return prev
}

// TasksOn returns the rows assigned on worker, in task order.
func (m *AssignmentMatrix) TasksOn(worker int) []int {
	var rows []int
	for task := range m.tasks {
		if _, ok := m.tags[cell{task, worker}]; ok {
			rows = append(rows, task)
		}
	}
	return rows
}

// PriorityTotal sums the tag weights of a column.
func (m *AssignmentMatrix) PriorityTotal(worker int) int {
	total := 0
	for task := range m.tasks {
		total += m.tags[cell{task, worker}].Weight
	}
	return total
}

// Assignments lists the non-None cells in task-major order.
func (m *AssignmentMatrix) Assignments() []Assignment {
	out := make([]Assignment, 0, len(m.tags))
	for task, id := range m.tasks {
		for worker, w := range m.workers {
			if tag, ok := m.tags[cell{task, worker}]; ok {
				out = append(out, Assignment{Task: task, Identity: id, Worker: w, Tag: tag})
			}
		}
	}
	return out
}

// Dropped lists the tasks that are assigned on no worker.
func (m *AssignmentMatrix) Dropped() []Identity {
	var out []Identity
	for task, id := range m.tasks {
		assigned := false
		for worker := range m.workers {
			if _, ok := m.tags[cell{task, worker}]; ok {
				assigned = true
				break
			}
		}
		if !assigned {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *AssignmentMatrix) Clone() *AssignmentMatrix {
	c := NewAssignmentMatrix(m.workers, m.tasks)
	for k, v := range m.tags {
		c.tags[k] = v
	}
	return c
}

type matrixJSON struct {
	Workers     []Worker     `json:"workers"`
	Tasks       []Identity   `json:"tasks"`
	Assignments []Assignment `json:"assignments"`
}

// MarshalJSON encodes the matrix as its labels plus the ordered non-None cells.
func (m *AssignmentMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{
		Workers:     m.workers,
		Tasks:       m.tasks,
		Assignments: m.Assignments(),
	})
}

// UnmarshalJSON restores a matrix encoded by MarshalJSON.
func (m *AssignmentMatrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = *NewAssignmentMatrix(raw.Workers, raw.Tasks)
	for _, a := range raw.Assignments {
		if a.Task < 0 || a.Task >= len(m.tasks) {
			return fmt.Errorf("assignment row %d out of range", a.Task)
		}
		worker := -1
		for i, w := range m.workers {
			if w == a.Worker {
				worker = i
				break
			}
		}
		if worker < 0 {
			return fmt.Errorf("assignment references unknown worker %q", a.Worker)
		}
		m.Set(a.Task, worker, a.Tag)
	}
	return nil
}

// String renders the matrix as a grid: one row per task, one column per
// worker, and a PriorityValue footer.
func (m *AssignmentMatrix) String() string {
	rowLabels := make([]string, len(m.tasks))
	width := len("PriorityValue")
	for i, id := range m.tasks {
		rowLabels[i] = id.String()
		width = max(width, len(rowLabels[i]))
	}
	colWidth := 3
	for _, w := range m.workers {
		colWidth = max(colWidth, len(w))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", width, "")
	for _, w := range m.workers {
		fmt.Fprintf(&b, " %*s", colWidth, w)
	}
	b.WriteByte('\n')
	for task, label := range rowLabels {
		fmt.Fprintf(&b, "%-*s", width, label)
		for worker := range m.workers {
			tag := m.Tag(task, worker)
			cellText := tag.Kind.Symbol()
			if tag.Weight != 0 {
				cellText = fmt.Sprintf("%d", tag.Weight)
			}
			fmt.Fprintf(&b, " %*s", colWidth, cellText)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%-*s", width, "PriorityValue")
	for worker := range m.workers {
		fmt.Fprintf(&b, " %*d", colWidth, m.PriorityTotal(worker))
	}
	b.WriteByte('\n')
	return b.String()
}

// Eviction records one task removed from a worker by the feasibility loop.
type Eviction struct {
	Identity Identity       `json:"identity"`
	Kind     TagKind        `json:"kind"`
	Reason   EvictionReason `json:"reason"`
	TieBreak int64          `json:"tie_break"`
}

// WorkerDiagnostics is the per-worker observability view of an assignment.
// Classic mode fills Utilization, Hyperperiod and Evictions; hybrid mode
// fills PriorityTotal.
type WorkerDiagnostics struct {
	Worker        Worker     `json:"worker"`
	Utilization   float64    `json:"utilization"`
	Hyperperiod   int64      `json:"hyperperiod"`
	PriorityTotal int        `json:"priority_total"`
	Evictions     []Eviction `json:"evictions,omitempty"`
}
