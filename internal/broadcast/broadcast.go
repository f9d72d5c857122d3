// Package broadcast hands finished cycle schedules to the transport layer.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/jamsched/pkg/model"
)

// Publisher delivers one broadcast per cycle. Delivery guarantees belong to
// the implementation.
type Publisher interface {
	Publish(ctx context.Context, b *model.Broadcast) error
}

// Envelope holds the cycle layout announced alongside every schedule.
type Envelope struct {
	ControllerID    string
	ProbingSlots    int
	ProbingDuration int64
	SYSlots         int
	SYDuration      int64
	RTReward        int
}

// Wrap builds the broadcast for a plan produced during cycle. The schedule
// takes effect on the following cycle.
func (e Envelope) Wrap(cycle int64, plan *model.Plan, now time.Time) *model.Broadcast {
	b := &model.Broadcast{
		ID:              "bc_" + uuid.New().String(),
		ControllerID:    e.ControllerID,
		Cycle:           cycle,
		EffectiveCycle:  cycle + 1,
		ProbingSlots:    e.ProbingSlots,
		ProbingDuration: e.ProbingDuration,
		SYSlots:         e.SYSlots,
		RTReward:        e.RTReward,
		Mode:            plan.Mode,
		Schedule:        plan.Schedule,
		CreatedAt:       now.UTC(),
	}
	if e.SYSlots > 0 {
		b.SYDurationPerSlot = e.SYDuration / int64(e.SYSlots)
	}
	return b
}

// Recorder keeps the most recent broadcast in memory.
type Recorder struct {
	mu     sync.RWMutex
	latest *model.Broadcast
	count  int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish replaces the recorded broadcast.
func (r *Recorder) Publish(_ context.Context, b *model.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = b
	r.count++
	return nil
}

// Latest returns the most recent broadcast, if any.
func (r *Recorder) Latest() (*model.Broadcast, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.latest != nil
}

// Count returns how many broadcasts have been published.
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// JSONPublisher writes each broadcast as one line of JSON.
type JSONPublisher struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONPublisher creates a publisher writing newline-delimited JSON to w.
func NewJSONPublisher(w io.Writer) *JSONPublisher {
	return &JSONPublisher{enc: json.NewEncoder(w)}
}

// Publish encodes b.
func (p *JSONPublisher) Publish(ctx context.Context, b *model.Broadcast) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(b); err != nil {
		return fmt.Errorf("encode broadcast %s: %w", b.ID, err)
	}
	return nil
}

// Multi publishes to every publisher in order and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, b *model.Broadcast) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
