package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/me/jamsched/internal/scheduler"
	"github.com/me/jamsched/internal/workload"
)

func newRebaseCmd() *cobra.Command {
	var (
		cycleLength int64
		cycles      int
	)

	cmd := &cobra.Command{
		Use:   "rebase <workload>",
		Short: "Shift release offsets across cycle boundaries",
		Long:  "Print the workload with every periodic release offset carried over one or more cycle boundaries.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cycle-length") {
				cfg, err := controllerConfig()
				if err != nil {
					return err
				}
				cycleLength = cfg.CycleDuration
			}
			if cycleLength <= 0 {
				return fmt.Errorf("cycle length must be positive, got %d", cycleLength)
			}
			if cycles < 0 {
				return fmt.Errorf("cycles must not be negative, got %d", cycles)
			}

			w, err := workload.NewParser(logger).ParseFile(args[0])
			if err != nil {
				return err
			}
			for range cycles {
				w.Tasks = scheduler.Rebase(w.Tasks, cycleLength)
			}
			logger.Debug("workload rebased", "cycle_length", cycleLength, "cycles", cycles)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(w); err != nil {
				return fmt.Errorf("encode workload: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().Int64Var(&cycleLength, "cycle-length", 0, "Cycle length in time units (default: config cycle_duration)")
	cmd.Flags().IntVar(&cycles, "cycles", 1, "Number of cycle boundaries to cross")
	return cmd
}
