// Package storage provides abstractions for persistent event storage.
package storage

import (
	"context"
	"errors"

	"github.com/ChiriacCasian/eventorganizer/internal/models"
)

// ErrNotFound is returned when no event exists for the given invite code.
var ErrNotFound = errors.New("event not found")

// ErrCodeTaken is returned by CreateEvent when the invite code is already in
// use. The store enforces uniqueness at insert time through its key
// constraint, so callers never rely on a prior existence check.
var ErrCodeTaken = errors.New("invite code already taken")

// Store defines the interface for event storage operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
//
// Every write covers the whole aggregate — the event row plus all owned
// participants, expenses and transactions — and is atomic: on error, nothing
// of the cascade is observable.
type Store interface {
	// ExistsEvent reports whether an event with the given code is persisted.
	ExistsEvent(ctx context.Context, code string) (bool, error)

	// GetEvent retrieves the full aggregate for the given code.
	// Returns ErrNotFound if the code is unknown.
	GetEvent(ctx context.Context, code string) (*models.Event, error)

	// ListEvents retrieves all persisted aggregates.
	ListEvents(ctx context.Context) ([]*models.Event, error)

	// CreateEvent inserts a new aggregate. Returns ErrCodeTaken if the
	// invite code is already in use.
	CreateEvent(ctx context.Context, event *models.Event) error

	// ReplaceEvent replaces an existing aggregate wholesale, preserving the
	// stored creation timestamp. Returns ErrNotFound if the code is unknown.
	ReplaceEvent(ctx context.Context, event *models.Event) error

	// DeleteEvent removes the aggregate and everything it owns, returning
	// the removed aggregate. Returns ErrNotFound if the code is unknown.
	DeleteEvent(ctx context.Context, code string) (*models.Event, error)

	// Close releases any resources held by the store.
	Close() error
}
