package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChiriacCasian/eventorganizer/internal/calculator"
	"github.com/ChiriacCasian/eventorganizer/internal/models"
	"github.com/ChiriacCasian/eventorganizer/internal/notify"
	"github.com/ChiriacCasian/eventorganizer/internal/service"
	"github.com/ChiriacCasian/eventorganizer/internal/storage"
)

// DefaultPollTimeout is how long a long-poll request is held open before it
// resolves with no content.
const DefaultPollTimeout = 5000 * time.Millisecond

// EventHandler serves the REST and streaming surface for event aggregates.
type EventHandler struct {
	events   *service.EventService
	registry *notify.Registry
	hub      *notify.Hub

	// pollTimeout bounds the long-poll wait window.
	pollTimeout time.Duration
}

// NewEventHandler creates a handler. A non-positive pollTimeout falls back
// to DefaultPollTimeout.
func NewEventHandler(events *service.EventService, registry *notify.Registry, hub *notify.Hub, pollTimeout time.Duration) *EventHandler {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &EventHandler{events: events, registry: registry, hub: hub, pollTimeout: pollTimeout}
}

// List handles GET /events.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// Get handles GET /events/:code.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Add handles POST /events.
func (h *EventHandler) Add(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}

	created, err := h.events.Add(c.Request.Context(), &event)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// Update handles PUT /events/:code. The path parameter names the aggregate;
// any code in the body is overridden by it.
func (h *EventHandler) Update(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}
	event.Code = c.Param("code")

	updated, err := h.events.Update(c.Request.Context(), &event)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /events/:code.
func (h *EventHandler) Delete(c *gin.Context) {
	deleted, err := h.events.Delete(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// Import handles POST /events/import: replace whatever is stored under the
// payload's code with the payload.
func (h *EventHandler) Import(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}

	imported, err := h.events.Import(c.Request.Context(), &event)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, imported)
}

// Updates handles GET /events/updates: the request is held open until a
// mutation commits or the wait window elapses. A timeout resolves with
// 204 No Content — the normal quiet outcome, not an error.
func (h *EventHandler) Updates(c *gin.Context) {
	event, ok := h.registry.Await(c.Request.Context(), h.pollTimeout)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Balances handles GET /events/:code/balances: each participant's standing
// plus the suggested settlement transactions.
func (h *EventHandler) Balances(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	balances := calculator.Balances(event)
	c.JSON(http.StatusOK, gin.H{
		"balances":    balances,
		"settlements": calculator.SettleUp(balances),
	})
}

// Stream handles GET /events/stream: a server-sent-event stream carrying
// every committed mutation. ?topics=add,update narrows the subscription to
// the named mutation kinds; by default the client gets all of them.
func (h *EventHandler) Stream(c *gin.Context) {
	topics, err := parseTopics(c.Query("topics"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, unsubscribe := h.hub.Subscribe(topics)
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	slog.Debug("stream client connected", "remote_addr", c.ClientIP())

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("stream client disconnected", "remote_addr", c.ClientIP())
			return
		case <-heartbeat.C:
			// SSE comment line; keeps intermediaries from closing the
			// connection without waking client-side event listeners.
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case n := <-client.Outbound:
			c.SSEvent(string(n.Kind), n)
			c.Writer.Flush()
		}
	}
}

// parseTopics turns a comma-separated topics parameter into mutation kinds.
func parseTopics(raw string) ([]notify.Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var topics []notify.Kind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !notify.ValidKind(part) {
			return nil, fmt.Errorf("unknown topic %q", part)
		}
		topics = append(topics, notify.Kind(part))
	}
	return topics, nil
}

// writeError maps the service error taxonomy onto HTTP statuses: validation
// failures are the client's fault, unknown codes are 404, anything else is a
// store-level failure that already rolled back.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	default:
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
