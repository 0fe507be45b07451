package notify

import (
	"context"
	"sync"
)

// MemoryBus is the in-process Bus: published notifications are handed to
// every registered forwarder synchronously, in publish order.
type MemoryBus struct {
	mu         sync.Mutex
	closed     bool
	forwarders []func(n Notification)
}

// NewMemoryBus returns an in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Publish delivers n to every forwarder registered at the time of the call.
// Publishes after Close are dropped.
func (b *MemoryBus) Publish(ctx context.Context, n Notification) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	snapshot := make([]func(n Notification), len(b.forwarders))
	copy(snapshot, b.forwarders)
	b.mu.Unlock()

	for _, onMsg := range snapshot {
		onMsg(n)
	}
	return nil
}

// StartForwarder registers onMsg for every subsequent publish.
func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(n Notification)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, onMsg)
	return nil
}

// Close marks the bus closed and drops the forwarders.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.forwarders = nil
	return nil
}
