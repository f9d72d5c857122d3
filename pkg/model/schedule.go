package model

import "fmt"

// ScheduleEntry is one [Start, Finish) interval on a worker. Slack entries
// carry no task identity and denote idle time.
type ScheduleEntry struct {
	Worker        Worker `json:"worker"`
	ApplicationID string `json:"application_id,omitempty"`
	TaskID        string `json:"task_id,omitempty"`
	Instance      int    `json:"instance"`
	Start         int64  `json:"start"`
	Finish        int64  `json:"finish"`
	Slack         bool   `json:"slack,omitempty"`
}

// SlackEntry returns an idle-time entry over [start, finish).
func SlackEntry(w Worker, start, finish int64) ScheduleEntry {
	return ScheduleEntry{Worker: w, Instance: -1, Start: start, Finish: finish, Slack: true}
}

// Identity returns the task identity of a non-slack entry.
func (e ScheduleEntry) Identity() Identity {
	return Identity{ApplicationID: e.ApplicationID, TaskID: e.TaskID}
}

// Duration is Finish - Start.
func (e ScheduleEntry) Duration() int64 {
	return e.Finish - e.Start
}

func (e ScheduleEntry) String() string {
	if e.Slack {
		return fmt.Sprintf("slack[%d,%d)", e.Start, e.Finish)
	}
	return fmt.Sprintf("%s/%s#%d[%d,%d)", e.ApplicationID, e.TaskID, e.Instance, e.Start, e.Finish)
}

// OverflowEntry is one task instance that could not be placed within its
// deadline window during the current horizon. Deadline is the task's
// relative deadline.
type OverflowEntry struct {
	Identity      Identity `json:"identity"`
	Instance      int      `json:"instance"`
	EarliestStart int64    `json:"earliest_start"`
	Computation   int64    `json:"computation"`
	Deadline      int64    `json:"deadline"`
	Priority      int      `json:"priority"`
}

// WorkerSchedule is the ordered timeline of one worker.
type WorkerSchedule struct {
	Worker   Worker          `json:"worker"`
	Horizon  int64           `json:"horizon"`
	Entries  []ScheduleEntry `json:"entries"`
	Overflow []OverflowEntry `json:"overflow,omitempty"`
}

// Busy sums the durations of non-slack entries.
func (ws WorkerSchedule) Busy() int64 {
	var busy int64
	for _, e := range ws.Entries {
		if !e.Slack {
			busy += e.Duration()
		}
	}
	return busy
}

// Schedule maps each worker, in input order, to its timeline.
type Schedule struct {
	Workers []WorkerSchedule `json:"workers"`
}

// For returns the timeline of w.
func (s *Schedule) For(w Worker) (WorkerSchedule, bool) {
	for _, ws := range s.Workers {
		if ws.Worker == w {
			return ws, true
		}
	}
	return WorkerSchedule{}, false
}

// Plan is the full result of one scheduling cycle.
type Plan struct {
	Mode        Mode                `json:"mode"`
	Matrix      *AssignmentMatrix   `json:"matrix"`
	Diagnostics []WorkerDiagnostics `json:"diagnostics"`
	Schedule    Schedule            `json:"schedule"`
}
