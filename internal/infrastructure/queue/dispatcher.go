package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// SessionApplier reconciles a session-change notification into local state.
type SessionApplier interface {
	Apply(change domain.SessionChange)
}

// Dispatcher routes session-change notifications to a fixed set of workers
// using consistent hashing on the user ID, guaranteeing per-user ordering.
type Dispatcher struct {
	workers []chan domain.SessionChange
	applier SessionApplier
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, applier SessionApplier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionChange, numWorkers),
		applier: applier,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionChange, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a change to the worker responsible for its user.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(change domain.SessionChange) {
	d.workers[d.shardIndex(change.UserID)] <- change
}

// EnqueueBatch enqueues multiple changes preserving per-user ordering.
func (d *Dispatcher) EnqueueBatch(changes []domain.SessionChange) {
	for _, c := range changes {
		d.Enqueue(c)
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			d.applier.Apply(change)
			d.log.Debug().
				Str("user_id", change.UserID).
				Str("change_type", change.Type).
				Int("worker_id", id).
				Msg("session change applied")
		}
	}
}
