package notify

import (
	"sync"

	"github.com/ChiriacCasian/eventorganizer/internal/metrics"
)

// Client is one push-stream subscriber. Unlike a long-poll waiter it is
// durable: it keeps receiving notifications for its topics until it
// unsubscribes or its connection drops.
type Client struct {
	// Outbound carries the client's notifications. Buffered; the hub drops
	// a notification rather than block on a slow client.
	Outbound chan Notification

	topics map[Kind]bool
}

// Wants reports whether the client subscribed to the given topic.
func (c *Client) Wants(k Kind) bool {
	return c.topics[k]
}

// Hub fans bus notifications out to connected push-stream clients. It is
// safe for concurrent use by handlers adding and removing clients while the
// bus forwarder broadcasts.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Subscribe registers a client for the given topics (all topics when the
// slice is empty) and returns it alongside an unsubscribe func. The caller
// must call unsubscribe when the stream ends.
func (h *Hub) Subscribe(topics []Kind) (*Client, func()) {
	c := &Client{
		Outbound: make(chan Notification, 16),
		topics:   make(map[Kind]bool, len(Kinds)),
	}
	if len(topics) == 0 {
		topics = Kinds
	}
	for _, k := range topics {
		c.topics[k] = true
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	metrics.StreamClients.Inc()

	return c, func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		metrics.StreamClients.Dec()
	}
}

// Broadcast delivers n to every connected client subscribed to its topic.
// Never blocks; a client with a full outbound buffer misses this one.
func (h *Hub) Broadcast(n Notification) {
	h.mu.Lock()
	snapshot := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.Wants(n.Kind) {
			snapshot = append(snapshot, c)
		}
	}
	h.mu.Unlock()

	for _, c := range snapshot {
		select {
		case c.Outbound <- n:
			metrics.PushDeliveries.WithLabelValues(string(n.Kind)).Inc()
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
