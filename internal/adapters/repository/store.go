// Package repository defines the event store and catalog contracts plus
// their in-memory and sqlite-backed implementations.
package repository

import (
	"context"

	"github.com/ideastack/ember/internal/domain/model"
)

// EventStore provides append-only writes and filtered read-back of
// engagement events. Events are never mutated or deleted.
type EventStore interface {
	// Append adds an event to the log.
	Append(ctx context.Context, e model.Event) error

	// ByIdea returns all events for an idea, oldest first.
	ByIdea(ctx context.Context, ideaID string) ([]model.Event, error)

	// ByAuthor returns all events attributed to an author, oldest first.
	ByAuthor(ctx context.Context, authorID string) ([]model.Event, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) int
}

// Catalog stores idea metadata and viewer profiles used to build feed
// candidates and viewer context.
type Catalog interface {
	PutIdea(ctx context.Context, idea model.Idea) error
	Idea(ctx context.Context, id string) (model.Idea, error)
	Ideas(ctx context.Context) ([]model.Idea, error)
	IdeasByAuthor(ctx context.Context, authorID string) ([]model.Idea, error)

	PutViewer(ctx context.Context, v model.Viewer) error
	Viewer(ctx context.Context, id string) (model.Viewer, error)
}

// Store combines the event log and catalog contracts. Both backends
// implement the full surface.
type Store interface {
	EventStore
	Catalog
}
