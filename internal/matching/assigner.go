// Package matching builds the worker x task assignment of one cycle and, in
// classic mode, evicts tasks until every worker passes the utilization and
// hyperperiod tests.
package matching

import (
	"fmt"

	"github.com/me/jamsched/pkg/model"
)

// Config holds the assignment parameters of one cycle.
type Config struct {
	// MaxHyperperiod bounds each worker's hyperperiod in classic mode.
	// Zero disables the bound.
	MaxHyperperiod int64
}

// Assigner turns task requirements into an assignment matrix.
type Assigner struct {
	cfg Config
}

// New creates an Assigner.
func New(cfg Config) *Assigner {
	return &Assigner{cfg: cfg}
}

// Assign tags every (task, worker) pair and, in classic mode, resolves
// overload by eviction. Diagnostics are returned in worker order.
func (a *Assigner) Assign(workers []model.Worker, tasks []model.TaskSpec, mode model.Mode) (*model.AssignmentMatrix, []model.WorkerDiagnostics, error) {
	if !mode.IsValid() {
		return nil, nil, model.NewValidationError("Invalid scheduling input",
			model.FieldError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)})
	}
	if errs := CheckInput(workers, tasks); len(errs) > 0 {
		return nil, nil, model.NewValidationError("Invalid scheduling input", errs...)
	}

	m := a.build(workers, tasks, mode)
	diags := make([]model.WorkerDiagnostics, len(workers))
	for j, w := range workers {
		diags[j].Worker = w
		if mode == model.ModeHybrid {
			diags[j].PriorityTotal = m.PriorityTotal(j)
			continue
		}
		if err := a.resolve(m, tasks, j, &diags[j]); err != nil {
			return nil, nil, err
		}
	}
	return m, diags, nil
}

func (a *Assigner) build(workers []model.Worker, tasks []model.TaskSpec, mode model.Mode) *model.AssignmentMatrix {
	ids := make([]model.Identity, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].Identity
	}
	m := model.NewAssignmentMatrix(workers, ids)
	for i := range tasks {
		for j, w := range workers {
			kind := tasks[i].Requires(w)
			if kind == model.TagNone {
				continue
			}
			tag := model.Tag{Kind: kind}
			if mode == model.ModeHybrid {
				tag.Weight = tasks[i].Weight(kind)
			}
			m.Set(i, j, tag)
		}
	}
	return m
}

// resolve runs the classic feasibility loop for worker column j, evicting
// one task per iteration until the worker is feasible.
func (a *Assigner) resolve(m *model.AssignmentMatrix, tasks []model.TaskSpec, j int, diag *model.WorkerDiagnostics) error {
	for {
		rows, load := periodicLoad(m, tasks, j)
		util := Utilization(load)
		hyper := Hyperperiod(load)
		diag.Utilization, _ = util.Float64()
		diag.Hyperperiod = hyper

		reason, ok := feasible(util, hyper, a.cfg.MaxHyperperiod)
		if ok {
			return nil
		}

		victim, found := pickVictim(m, tasks, rows, j, reason)
		if !found {
			return &model.FeasibilityError{
				Worker:      diag.Worker,
				Utilization: diag.Utilization,
				Hyperperiod: hyper,
				Bound:       a.cfg.MaxHyperperiod,
			}
		}
		prev := m.Clear(victim, j)
		diag.Evictions = append(diag.Evictions, model.Eviction{
			Identity: tasks[victim].Identity,
			Kind:     prev.Kind,
			Reason:   reason,
			TieBreak: tieBreak(&tasks[victim], reason),
		})
	}
}

// periodicLoad returns the rows of the periodic tasks assigned on column j.
func periodicLoad(m *model.AssignmentMatrix, tasks []model.TaskSpec, j int) ([]int, []*model.TaskSpec) {
	var rows []int
	var load []*model.TaskSpec
	for _, i := range m.TasksOn(j) {
		if tasks[i].IsPeriodic() {
			rows = append(rows, i)
			load = append(load, &tasks[i])
		}
	}
	return rows, load
}

// pickVictim selects the task to evict from column j. Optional tags are
// evicted before compulsory ones. Within a kind the largest tie-break value
// wins and equal values go to the last row scanned.
func pickVictim(m *model.AssignmentMatrix, tasks []model.TaskSpec, rows []int, j int, reason model.EvictionReason) (int, bool) {
	for _, kind := range []model.TagKind{model.TagOptional, model.TagCompulsory} {
		victim := -1
		var best int64
		for _, i := range rows {
			if m.Tag(i, j).Kind != kind {
				continue
			}
			if v := tieBreak(&tasks[i], reason); victim < 0 || v >= best {
				victim, best = i, v
			}
		}
		if victim >= 0 {
			return victim, true
		}
	}
	return -1, false
}

func tieBreak(t *model.TaskSpec, reason model.EvictionReason) int64 {
	if reason == model.ReasonHyperperiod {
		return t.Deadline
	}
	return t.Computation
}
