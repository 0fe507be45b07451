package notify

import (
	"context"
	"log/slog"

	"github.com/ChiriacCasian/eventorganizer/internal/metrics"
	"github.com/ChiriacCasian/eventorganizer/internal/models"
)

// Broadcaster is the public notification surface. The mutation pipeline
// calls Broadcast exactly once per committed mutation, strictly after the
// commit; the same payload then reaches the long-poll waiters and the push
// topics, so the two channels never diverge.
type Broadcaster struct {
	registry *Registry
	bus      Bus
}

// NewBroadcaster wires the registry and bus behind one broadcast call.
func NewBroadcaster(registry *Registry, bus Bus) *Broadcaster {
	return &Broadcaster{registry: registry, bus: bus}
}

// Registry exposes the long-poll registry, for the updates handler.
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Broadcast fans the committed aggregate out: long-poll waiters first (in
// commit order, synchronously), then the push bus. A bus failure is logged,
// not propagated — the mutation is already committed and the caller has
// nothing left to roll back.
func (b *Broadcaster) Broadcast(ctx context.Context, kind Kind, event *models.Event) {
	metrics.Mutations.WithLabelValues(string(kind)).Inc()

	notified := b.registry.Notify(event)
	slog.Debug("long-poll waiters notified", "kind", kind, "code", event.Code, "waiters", notified)

	if err := b.bus.Publish(ctx, Notification{Kind: kind, Event: event}); err != nil {
		slog.Error("push publish failed", "kind", kind, "code", event.Code, "error", err)
	}
}
