package notify

import "context"

// Bus is the transport behind the push topics. Every committed mutation is
// published once; forwarders deliver each published notification to the
// local Hub. The in-process MemoryBus serves a single instance; RedisBus
// lets several instances share one notification stream.
type Bus interface {
	// Publish sends one notification to every forwarder, local or remote.
	Publish(ctx context.Context, n Notification) error

	// StartForwarder delivers every published notification to onMsg until
	// ctx is canceled. onMsg must not block.
	StartForwarder(ctx context.Context, onMsg func(n Notification)) error

	// Close releases the transport.
	Close() error
}
