package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "submit <workload>",
		Short: "Replace the controller's workload from its next cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := flags.load(cmd, args[0])
			if err != nil {
				return err
			}

			logger.Info("submitting workload", "path", args[0], "workers", len(w.Workers), "tasks", len(w.Tasks))
			accepted, err := client.SubmitWorkload(cmd.Context(), w)
			if err != nil {
				for _, d := range errorDetails(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %-24s %s\n", d.Field, d.Message)
				}
				return fmt.Errorf("submit workload: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workload accepted: %d workers, %d tasks, planned from cycle %d\n",
				accepted.Workers, accepted.Tasks, accepted.Cycle)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
