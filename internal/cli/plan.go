package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/jamsched/internal/config"
	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

// planFlags override the cycle parameters of a loaded workload.
type planFlags struct {
	mode           string
	maxHyperperiod int64
	horizon        int64
	window         string
	parallelism    int
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "Override the workload mode (classic, hybrid)")
	cmd.Flags().Int64Var(&f.maxHyperperiod, "max-hyperperiod", 0, "Override the classic hyperperiod bound")
	cmd.Flags().Int64Var(&f.horizon, "horizon", 0, "Override the hybrid scheduling duration")
	cmd.Flags().StringVar(&f.window, "window", "", "Instance deadline window (deadline, period)")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", 0, "Workers packed concurrently (0 = GOMAXPROCS)")
}

// load reads the workload at path, fills config defaults and applies the
// changed flags on top.
func (f *planFlags) load(cmd *cobra.Command, path string) (*workload.Workload, config.ControllerConfig, error) {
	cfg, err := controllerConfig()
	if err != nil {
		return nil, cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.Window = f.window
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = f.parallelism
	}
	if cfg.Window != config.WindowDeadline && cfg.Window != config.WindowPeriod {
		return nil, cfg, fmt.Errorf("unknown window %q", cfg.Window)
	}

	w, err := workload.NewParser(logger).ParseFile(path)
	if err != nil {
		return nil, cfg, err
	}
	w.ApplyDefaults(cfg.Defaults())
	if flags.Changed("mode") {
		w.Mode = model.Mode(f.mode)
	}
	if flags.Changed("max-hyperperiod") {
		w.MaxHyperperiod = f.maxHyperperiod
	}
	if flags.Changed("horizon") {
		w.Horizon = f.horizon
	}
	return w, cfg, nil
}

func newPlanCmd() *cobra.Command {
	var (
		flags  planFlags
		asJSON bool
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "plan <workload>",
		Short: "Plan a workload and print the assignment matrix and worker timelines",
		Long:  "Plan a YAML or JSON workload locally, or on the controller with --remote, and print the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cfg, err := flags.load(cmd, args[0])
			if err != nil {
				return err
			}

			var plan *model.Plan
			if remote {
				plan, err = client.Plan(cmd.Context(), w)
				if err != nil {
					return fmt.Errorf("remote plan: %w", err)
				}
			} else {
				plan, err = scheduler.NewPlanner(cfg.PlannerConfig(), logger).Plan(cmd.Context(), w)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			printPlan(out, plan)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "Plan on the controller instead of locally")
	return cmd
}

func printPlan(out io.Writer, plan *model.Plan) {
	fmt.Fprintf(out, "Mode: %s\n\n", plan.Mode)
	if plan.Matrix != nil {
		fmt.Fprintf(out, "Assignment matrix:\n%s\n", plan.Matrix)
	}

	for _, d := range plan.Diagnostics {
		for _, ev := range d.Evictions {
			fmt.Fprintf(out, "Evicted %s from %s (%s, %s, tie-break %d)\n",
				ev.Identity, d.Worker, ev.Kind, ev.Reason, ev.TieBreak)
		}
	}

	for _, ws := range plan.Schedule.Workers {
		fmt.Fprintf(out, "\nWorker %s  horizon=%d  busy=%d\n", ws.Worker, ws.Horizon, ws.Busy())
		for _, e := range ws.Entries {
			label := "-"
			if !e.Slack {
				label = fmt.Sprintf("%s#%d", e.Identity(), e.Instance)
			}
			fmt.Fprintf(out, "  %10d  %10d  %s\n", e.Start, e.Finish, label)
		}
		for _, o := range ws.Overflow {
			fmt.Fprintf(out, "  overflow  %s#%d  earliest=%d computation=%d deadline=%d priority=%d\n",
				o.Identity, o.Instance, o.EarliestStart, o.Computation, o.Deadline, o.Priority)
		}
	}
}
