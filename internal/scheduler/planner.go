package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/me/jamsched/internal/matching"
	"github.com/me/jamsched/internal/packer"
	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

// PlannerConfig holds the cycle-independent planning parameters.
type PlannerConfig struct {
	Bands model.PriorityBands
	// Window selects the instance deadline window. Nil means packer.DeadlineWindow.
	Window packer.WindowFunc
	// Parallelism bounds how many workers are packed at once. Zero means
	// GOMAXPROCS.
	Parallelism int
}

// DefaultPlannerConfig returns the standard band layout with deadline windows.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{Bands: model.DefaultPriorityBands()}
}

// Planner turns one cycle's workload into a plan: validate, assign, then pack
// every worker.
type Planner struct {
	config    PlannerConfig
	validator *workload.Validator
	packer    *packer.Packer
	logger    *slog.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(cfg PlannerConfig, logger *slog.Logger) *Planner {
	return &Planner{
		config:    cfg,
		validator: workload.NewValidator(cfg.Bands, logger),
		packer:    packer.New(cfg.Window),
		logger:    logger.With("component", "planner"),
	}
}

// Validate checks w without planning it.
func (p *Planner) Validate(w *workload.Workload) *model.APIError {
	return p.validator.Validate(w)
}

// Plan schedules w. The workload is not modified. Errors are a validation
// *model.APIError, a *model.FeasibilityError or a *model.PlacementError,
// possibly wrapped.
func (p *Planner) Plan(ctx context.Context, w *workload.Workload) (*model.Plan, error) {
	if apiErr := p.Validate(w); apiErr != nil {
		return nil, apiErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assigner := matching.New(matching.Config{MaxHyperperiod: w.MaxHyperperiod})
	matrix, diags, err := assigner.Assign(w.Workers, w.Tasks, w.Mode)
	if err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}
	for _, d := range diags {
		for _, ev := range d.Evictions {
			p.logger.Info("task evicted",
				"worker", d.Worker, "task", ev.Identity.String(), "kind", ev.Kind, "reason", ev.Reason, "tie_break", ev.TieBreak)
		}
	}

	schedules := make([]model.WorkerSchedule, len(w.Workers))
	errs := make([]error, len(w.Workers))

	var g errgroup.Group
	g.SetLimit(p.parallelism())
	for j, worker := range w.Workers {
		g.Go(func() error {
			horizon := p.horizon(w, diags[j])
			tl, q, err := p.packer.Pack(worker, jobsOn(matrix, w.Tasks, j), horizon, w.Mode)
			if err != nil {
				errs[j] = err
				return err
			}
			ws := tl.Schedule(horizon)
			if q.Len() > 0 {
				ws.Overflow = q.Entries()
			}
			schedules[j] = ws
			return nil
		})
	}
	g.Wait()

	// Report the first failure in worker order, not in completion order.
	for j, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("pack worker %s: %w", w.Workers[j], err)
		}
	}

	plan := &model.Plan{
		Mode:        w.Mode,
		Matrix:      matrix,
		Diagnostics: diags,
		Schedule:    model.Schedule{Workers: schedules},
	}
	p.logger.Debug("cycle planned",
		"mode", w.Mode, "workers", len(w.Workers), "tasks", len(w.Tasks),
		"dropped", len(matrix.Dropped()), "overflow", overflowCount(plan))
	return plan, nil
}

func (p *Planner) parallelism() int {
	if p.config.Parallelism > 0 {
		return p.config.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// horizon is the worker's hyperperiod in classic mode, falling back to the
// hyperperiod bound for an idle worker, and the scheduling duration in hybrid
// mode.
func (p *Planner) horizon(w *workload.Workload, diag model.WorkerDiagnostics) int64 {
	if w.Mode == model.ModeHybrid {
		return w.Horizon
	}
	if diag.Hyperperiod > 0 {
		return diag.Hyperperiod
	}
	return w.MaxHyperperiod
}

// jobsOn lists the tasks tagged on worker column j, in task order.
func jobsOn(m *model.AssignmentMatrix, tasks []model.TaskSpec, j int) []packer.Job {
	rows := m.TasksOn(j)
	jobs := make([]packer.Job, 0, len(rows))
	for _, i := range rows {
		jobs = append(jobs, packer.Job{Task: &tasks[i], Tag: m.Tag(i, j)})
	}
	return jobs
}

func overflowCount(plan *model.Plan) int {
	n := 0
	for _, ws := range plan.Schedule.Workers {
		n += len(ws.Overflow)
	}
	return n
}
