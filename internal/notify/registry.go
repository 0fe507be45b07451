package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ChiriacCasian/eventorganizer/internal/metrics"
	"github.com/ChiriacCasian/eventorganizer/internal/models"
)

// Registry tracks outstanding long-poll waiters. Each waiter is a one-shot
// completion channel: it resolves with at most one mutated aggregate and is
// removed from the registry on any outcome. A caller that wants continuous
// updates re-registers after each resolution.
type Registry struct {
	mu      sync.Mutex
	nextID  int64
	waiters map[int64]chan *models.Event
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{waiters: make(map[int64]chan *models.Event)}
}

// Await registers a fresh waiter and suspends until a mutation is delivered,
// the timeout elapses, or ctx is canceled. It returns the mutated aggregate
// and true on fulfillment, or nil and false otherwise — a timeout is a
// normal outcome, not an error. The registry lock is never held while
// suspended, and the waiter is removed on every path, so dropped connections
// cannot leak entries.
func (r *Registry) Await(ctx context.Context, timeout time.Duration) (*models.Event, bool) {
	// Buffered so that Notify never blocks on a waiter that is resolving
	// concurrently.
	ch := make(chan *models.Event, 1)

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.waiters[id] = ch
	r.mu.Unlock()
	metrics.LongPollWaiters.Inc()
	defer func() {
		r.remove(id)
		metrics.LongPollWaiters.Dec()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-ch:
		metrics.LongPollDeliveries.Inc()
		return event, true
	case <-timer.C:
		metrics.LongPollTimeouts.Inc()
		return nil, false
	case <-ctx.Done():
		// Dropped connection; clean up like a timeout.
		return nil, false
	}
}

// Notify delivers the committed aggregate to every waiter registered at the
// moment of the call. The waiter map is snapshotted and cleared under the
// lock, then delivery happens outside it: waiters registering concurrently
// are untouched by this notification and cannot be double-notified.
// Returns the number of waiters notified.
func (r *Registry) Notify(event *models.Event) int {
	r.mu.Lock()
	snapshot := make([]chan *models.Event, 0, len(r.waiters))
	for id, ch := range r.waiters {
		snapshot = append(snapshot, ch)
		delete(r.waiters, id)
	}
	r.mu.Unlock()

	for _, ch := range snapshot {
		// Each channel has capacity 1 and exactly one Notify can reach it
		// (it was removed from the map above), so this never blocks. If the
		// waiter timed out in the same instant, the value is simply dropped
		// with the channel.
		ch <- event
	}
	return len(snapshot)
}

// Pending returns the number of currently registered waiters.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

func (r *Registry) remove(id int64) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}
