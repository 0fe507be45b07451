// Package service implements the mutation pipeline for event aggregates:
// validate, assign identifier, persist, then broadcast the committed state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ChiriacCasian/eventorganizer/internal/graph"
	"github.com/ChiriacCasian/eventorganizer/internal/invite"
	"github.com/ChiriacCasian/eventorganizer/internal/models"
	"github.com/ChiriacCasian/eventorganizer/internal/notify"
	"github.com/ChiriacCasian/eventorganizer/internal/storage"
)

// maxCodeAttempts caps the generate-and-insert retry loop. The code space
// is 31^6, so hitting the cap with honest randomness means something is
// badly wrong; better to fail loudly than spin.
const maxCodeAttempts = 16

// EventService orchestrates event mutations. All four mutations commit
// atomically against the store and broadcast strictly after the commit, so
// observers only ever see committed state.
type EventService struct {
	store       storage.Store
	codes       *invite.Generator
	broadcaster *notify.Broadcaster
}

// NewEventService creates an EventService with the given collaborators.
func NewEventService(store storage.Store, codes *invite.Generator, broadcaster *notify.Broadcaster) *EventService {
	return &EventService{store: store, codes: codes, broadcaster: broadcaster}
}

// Get retrieves the aggregate for the given code.
func (s *EventService) Get(ctx context.Context, code string) (*models.Event, error) {
	return s.store.GetEvent(ctx, code)
}

// List retrieves all persisted aggregates.
func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	return s.store.ListEvents(ctx)
}

// Add validates and persists a new event. When the payload carries no invite
// code, a fresh unique one is generated; when it carries one, the code must
// be well-formed and free. On success the committed aggregate is broadcast
// with kind "add".
func (s *EventService) Add(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := s.validate(event, event.Code != ""); err != nil {
		return nil, err
	}

	if err := s.persistNew(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event added", "code", event.Code, "title", event.Title)
	s.broadcaster.Broadcast(ctx, notify.KindAdd, event)
	return event, nil
}

// Update validates and replaces the stored aggregate wholesale. The stored
// creation timestamp is kept; everything else comes from the payload. On
// success the committed aggregate is broadcast with kind "update".
func (s *EventService) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := s.validate(event, true); err != nil {
		return nil, err
	}
	if err := graph.Normalize(event); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if err := s.store.ReplaceEvent(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event updated", "code", event.Code, "title", event.Title)
	s.broadcaster.Broadcast(ctx, notify.KindUpdate, event)
	return event, nil
}

// Delete removes the aggregate for the given code, returning it. On success
// the removed aggregate is broadcast with kind "delete". Returns
// storage.ErrNotFound when the code is unknown; nothing is broadcast then.
func (s *EventService) Delete(ctx context.Context, code string) (*models.Event, error) {
	event, err := s.store.DeleteEvent(ctx, code)
	if err != nil {
		return nil, err
	}

	slog.Info("event deleted", "code", code)
	s.broadcaster.Broadcast(ctx, notify.KindDelete, event)
	return event, nil
}

// Import replaces whatever is stored under the payload's code with the
// payload: delete ignoring not-found, then add with the same code. Exactly
// one broadcast fires, with kind "import".
func (s *EventService) Import(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := s.validate(event, true); err != nil {
		return nil, err
	}

	if _, err := s.store.DeleteEvent(ctx, event.Code); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if err := s.persistNew(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event imported", "code", event.Code, "title", event.Title)
	s.broadcaster.Broadcast(ctx, notify.KindImport, event)
	return event, nil
}

// persistNew normalizes and inserts the aggregate, generating a code when
// the payload has none. Generation retries on collision: uniqueness is
// enforced by the store's key constraint at insert time, not by a prior
// existence check, so two pipelines racing for the same code cannot both
// win.
func (s *EventService) persistNew(ctx context.Context, event *models.Event) error {
	if event.Code != "" {
		if err := graph.Normalize(event); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
		err := s.store.CreateEvent(ctx, event)
		if errors.Is(err, storage.ErrCodeTaken) {
			return &ValidationError{Reason: fmt.Sprintf("invite code %q already in use", event.Code)}
		}
		return err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		event.Code = s.codes.Generate()
		if err := graph.Normalize(event); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
		err := s.store.CreateEvent(ctx, event)
		if errors.Is(err, storage.ErrCodeTaken) {
			slog.Warn("invite code collision, regenerating", "code", event.Code, "attempt", attempt+1)
			continue
		}
		return err
	}
	event.Code = ""
	return ErrCodeSpaceExhausted
}

// validate applies the root-level rules: non-empty title, creation timestamp
// present, and (when required) a well-formed invite code. Graph-level
// validation happens in Normalize.
func (s *EventService) validate(event *models.Event, codeRequired bool) error {
	if event == nil {
		return &ValidationError{Reason: "missing payload"}
	}
	if strings.TrimSpace(event.Title) == "" {
		return &ValidationError{Reason: "title must not be empty"}
	}
	if event.CreatedAt <= 0 {
		return &ValidationError{Reason: "creation timestamp is required"}
	}
	if codeRequired && !invite.Valid(event.Code) {
		return &ValidationError{Reason: fmt.Sprintf("malformed invite code %q", event.Code)}
	}
	return nil
}
