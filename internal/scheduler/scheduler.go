// Package scheduler drives the controller's scheduling cycles: it plans each
// cycle's workload, publishes the result and carries release offsets over to
// the next cycle.
package scheduler

import "context"

// Scheduler runs the periodic cycle loop.
type Scheduler interface {
	// Start begins the cycle loop. Blocks until ctx is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler.
	Stop() error

	// Tick runs a single cycle. Used for testing.
	Tick(ctx context.Context) error
}

var _ Scheduler = (*Loop)(nil)
