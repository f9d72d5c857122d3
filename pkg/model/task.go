package model

import "fmt"

// OneShot is the period sentinel for a task that runs exactly once per cycle.
const OneShot int64 = -1

// Identity names a task within one cycle.
type Identity struct {
	ApplicationID string `json:"application_id" yaml:"application_id"`
	TaskID        string `json:"task_id" yaml:"task_id"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s", id.ApplicationID, id.TaskID)
}

// TaskClass distinguishes time-critical work from opportunistic batch work.
type TaskClass string

const (
	ClassRT TaskClass = "rt"
	ClassSY TaskClass = "sy"
)

// Priority holds the weights a task carries when tagged compulsory or optional
// on a worker. Compulsory weights are always above optional ones.
type Priority struct {
	Compulsory int `json:"compulsory" yaml:"compulsory"`
	Optional   int `json:"optional" yaml:"optional"`
}

// TaskSpec is one schedulable unit. All times share the cycle's time unit.
type TaskSpec struct {
	Identity `yaml:",inline"`

	Class      TaskClass `json:"class,omitempty" yaml:"class,omitempty"`
	Compulsory []Worker  `json:"compulsory,omitempty" yaml:"compulsory,omitempty"`
	Optional   []Worker  `json:"optional,omitempty" yaml:"optional,omitempty"`

	Release     int64 `json:"release" yaml:"release"`
	Computation int64 `json:"computation" yaml:"computation"`
	// Period is either positive or OneShot.
	Period   int64 `json:"period" yaml:"period"`
	Deadline int64 `json:"deadline" yaml:"deadline"`

	Priority Priority `json:"priority" yaml:"priority"`
}

// IsOneShot reports whether the task never repeats within a cycle.
func (t *TaskSpec) IsOneShot() bool {
	return t.Period == OneShot
}

// IsPeriodic reports whether the task repeats with a positive period.
func (t *TaskSpec) IsPeriodic() bool {
	return t.Period > 0
}

// AbsoluteDeadline is the deadline of the first instance, used for EDF ordering.
func (t *TaskSpec) AbsoluteDeadline() int64 {
	return t.Release + t.Deadline
}

// ClassOrDefault returns the task class, treating an empty class as RT.
func (t *TaskSpec) ClassOrDefault() TaskClass {
	if t.Class == "" {
		return ClassRT
	}
	return t.Class
}

// Requires reports how the task references w: compulsory, optional or not at all.
func (t *TaskSpec) Requires(w Worker) TagKind {
	for _, c := range t.Compulsory {
		if c == w {
			return TagCompulsory
		}
	}
	for _, o := range t.Optional {
		if o == w {
			return TagOptional
		}
	}
	return TagNone
}

// Weight returns the priority weight matching kind, or 0 for TagNone.
func (t *TaskSpec) Weight(kind TagKind) int {
	switch kind {
	case TagCompulsory:
		return t.Priority.Compulsory
	case TagOptional:
		return t.Priority.Optional
	}
	return 0
}
