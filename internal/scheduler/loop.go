package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/jamsched/internal/broadcast"
	"github.com/me/jamsched/internal/workload"
)

// Config holds cycle loop configuration.
type Config struct {
	// Interval is the wall-clock length of one cycle.
	Interval time.Duration
	// CycleLength is the cycle length in schedule time units. Release
	// offsets are rebased by it after every cycle.
	CycleLength int64
	Envelope    broadcast.Envelope
}

// DefaultConfig returns the standard 6500-unit cycle at one millisecond per
// unit.
func DefaultConfig() Config {
	return Config{
		Interval:    6500 * time.Millisecond,
		CycleLength: 6500,
		Envelope: broadcast.Envelope{
			ProbingSlots:    4,
			ProbingDuration: 500,
			SYSlots:         4,
			SYDuration:      1000,
			RTReward:        5,
		},
	}
}

// Loop implements the Scheduler interface with a ticker-driven cycle loop.
// Each tick plans the current workload, publishes the broadcast and rebases
// release offsets for the next cycle.
type Loop struct {
	planner   *Planner
	publisher broadcast.Publisher
	config    Config
	logger    *slog.Logger
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu       sync.Mutex
	workload *workload.Workload
	pending  *workload.Workload
	cycle    int64
}

// NewLoop creates a new cycle loop over an initial workload, which may be nil.
func NewLoop(planner *Planner, pub broadcast.Publisher, w *workload.Workload, cfg Config, logger *slog.Logger) *Loop {
	return &Loop{
		planner:   planner,
		publisher: pub,
		config:    cfg,
		workload:  w,
		logger:    logger.With("component", "scheduler"),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the cycle loop. Blocks until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.logger.Info("scheduler started", "interval", l.config.Interval, "cycle_length", l.config.CycleLength)
	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("scheduler stopping (context cancelled)")
			close(l.doneCh)
			return ctx.Err()
		case <-l.stopCh:
			l.logger.Info("scheduler stopping (stop called)")
			close(l.doneCh)
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil {
				l.logger.Error("tick error", "error", err)
			}
		}
	}
}

// Stop gracefully shuts down the loop and waits for the current tick to finish.
func (l *Loop) Stop() error {
	close(l.stopCh)
	<-l.doneCh
	return nil
}

// SetWorkload replaces the workload from the next tick on.
func (l *Loop) SetWorkload(w *workload.Workload) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = w
}

// Workload returns a copy of the workload the next tick will plan, or nil.
func (l *Loop) Workload() *workload.Workload {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.workload
	if l.pending != nil {
		w = l.pending
	}
	if w == nil {
		return nil
	}
	return w.Clone()
}

// Cycle returns the number of the next cycle to run.
func (l *Loop) Cycle() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cycle
}

// Tick runs one cycle. The cycle counter advances and release offsets are
// rebased even when planning or publishing fails.
func (l *Loop) Tick(ctx context.Context) error {
	l.mu.Lock()
	if l.pending != nil {
		l.workload, l.pending = l.pending, nil
	}
	cycle := l.cycle
	var w *workload.Workload
	if l.workload != nil {
		w = l.workload.Clone()
	}
	l.mu.Unlock()

	defer l.advance()

	if w == nil {
		l.logger.Debug("no workload; cycle skipped", "cycle", cycle)
		return nil
	}

	plan, err := l.planner.Plan(ctx, w)
	if err != nil {
		return fmt.Errorf("cycle %d: plan: %w", cycle, err)
	}

	b := l.config.Envelope.Wrap(cycle, plan, time.Now())
	if err := l.publisher.Publish(ctx, b); err != nil {
		return fmt.Errorf("cycle %d: publish: %w", cycle, err)
	}
	l.logger.Info("cycle published", "cycle", cycle, "effective_cycle", b.EffectiveCycle, "broadcast_id", b.ID)
	return nil
}

// advance moves to the next cycle.
func (l *Loop) advance() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workload != nil {
		l.workload.Tasks = Rebase(l.workload.Tasks, l.config.CycleLength)
	}
	l.cycle++
}
