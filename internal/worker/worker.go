// Package worker follows the controller from the worker side: it polls for
// new broadcasts and hands the worker's own timeline to a Handler.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/jamsched/pkg/model"
)

// Assignment is one worker's share of a broadcast.
type Assignment struct {
	BroadcastID       string               `json:"broadcast_id"`
	Cycle             int64                `json:"cycle"`
	EffectiveCycle    int64                `json:"effective_cycle"`
	SYSlots           int                  `json:"num_sy_slots"`
	SYDurationPerSlot int64                `json:"sy_duration_per_slot"`
	Schedule          model.WorkerSchedule `json:"schedule"`
}

// Handler receives each new assignment. An error is logged and the
// assignment is not retried.
type Handler func(ctx context.Context, a Assignment) error

// Config holds worker configuration.
type Config struct {
	ServerURL string
	Name      model.Worker
	Poll      time.Duration
}

// Worker polls the controller and dispatches new assignments.
type Worker struct {
	client  *Client
	name    model.Worker
	poll    time.Duration
	handler Handler
	logger  *slog.Logger

	lastID string
}

// New creates a Worker from configuration.
func New(cfg Config, client *Client, handler Handler, logger *slog.Logger) *Worker {
	if cfg.Poll == 0 {
		cfg.Poll = time.Second
	}
	if client == nil {
		client = NewClient(cfg.ServerURL, nil)
	}
	return &Worker{
		client:  client,
		name:    cfg.Name,
		poll:    cfg.Poll,
		handler: handler,
		logger:  logger.With("component", "worker", "worker", cfg.Name),
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return nil
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.logger.Error("poll error", "error", err)
			}
		}
	}
}

// Poll fetches the latest broadcast and dispatches it if it is new and
// names this worker. It reports whether the handler was called.
func (w *Worker) Poll(ctx context.Context) (bool, error) {
	b, err := w.client.Latest(ctx)
	if err != nil {
		return false, err
	}
	if b == nil || b.ID == w.lastID {
		return false, nil
	}
	w.lastID = b.ID

	ws, ok := b.Schedule.For(w.name)
	if !ok {
		w.logger.Warn("worker not in broadcast", "broadcast_id", b.ID, "cycle", b.Cycle)
		return false, nil
	}

	a := Assignment{
		BroadcastID:       b.ID,
		Cycle:             b.Cycle,
		EffectiveCycle:    b.EffectiveCycle,
		SYSlots:           b.SYSlots,
		SYDurationPerSlot: b.SYDurationPerSlot,
		Schedule:          ws,
	}
	w.logger.Info("assignment received",
		"broadcast_id", b.ID, "effective_cycle", b.EffectiveCycle,
		"entries", len(ws.Entries), "busy", ws.Busy(), "overflow", len(ws.Overflow))

	if err := w.handler(ctx, a); err != nil {
		return true, fmt.Errorf("handle broadcast %s: %w", b.ID, err)
	}
	return true, nil
}

// LogHandler logs every non-slack entry of an assignment at DEBUG.
func LogHandler(logger *slog.Logger) Handler {
	return func(_ context.Context, a Assignment) error {
		for _, e := range a.Schedule.Entries {
			if e.Slack {
				continue
			}
			logger.Debug("slot",
				"effective_cycle", a.EffectiveCycle,
				"task", e.Identity().String(), "instance", e.Instance,
				"start", e.Start, "finish", e.Finish)
		}
		return nil
	}
}
