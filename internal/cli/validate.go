package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/pkg/model"
)

func newValidateCmd() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "validate <workload>",
		Short: "Check a workload without planning it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cfg, err := flags.load(cmd, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			planner := scheduler.NewPlanner(cfg.PlannerConfig(), logger)
			if apiErr := planner.Validate(w); apiErr != nil {
				fmt.Fprintf(out, "%s: %s\n", args[0], apiErr.Message)
				for _, d := range apiErr.Details {
					fmt.Fprintf(out, "  %-24s %s\n", d.Field, d.Message)
				}
				return errors.New("workload is invalid")
			}
			fmt.Fprintf(out, "%s: ok (%s, %d workers, %d tasks)\n", args[0], w.Mode, len(w.Workers), len(w.Tasks))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// errorDetails flattens an API error for display.
func errorDetails(err error) []model.FieldError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Details
	}
	return nil
}
