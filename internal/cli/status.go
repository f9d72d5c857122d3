package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the controller's most recent broadcast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := client.Latest(cmd.Context())
			if err != nil {
				return fmt.Errorf("get latest cycle: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}

			fmt.Fprintf(out, "Broadcast:  %s\n", b.ID)
			fmt.Fprintf(out, "  Controller: %s\n", b.ControllerID)
			fmt.Fprintf(out, "  Cycle:      %d (effective %d)\n", b.Cycle, b.EffectiveCycle)
			fmt.Fprintf(out, "  Mode:       %s\n", b.Mode)
			fmt.Fprintf(out, "  Probing:    %d slots, %d units\n", b.ProbingSlots, b.ProbingDuration)
			fmt.Fprintf(out, "  SY:         %d slots, %d units each\n", b.SYSlots, b.SYDurationPerSlot)
			fmt.Fprintf(out, "  RT reward:  %d\n", b.RTReward)
			fmt.Fprintf(out, "  Created:    %s\n", b.CreatedAt.Format(time.RFC3339))

			fmt.Fprintf(out, "\n%-12s  %10s  %10s  %8s  %s\n", "WORKER", "HORIZON", "BUSY", "ENTRIES", "OVERFLOW")
			for _, ws := range b.Schedule.Workers {
				fmt.Fprintf(out, "%-12s  %10d  %10d  %8d  %d\n",
					ws.Worker, ws.Horizon, ws.Busy(), len(ws.Entries), len(ws.Overflow))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw broadcast JSON")
	return cmd
}
