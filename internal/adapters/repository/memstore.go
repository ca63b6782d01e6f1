package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/ideastack/ember/internal/domain/model"
)

// Default in-memory store configuration constants.
const defaultEventCapacity = 4096

// MemStore implements Store with in-process indexed slices. It mirrors the
// demo-mode local storage shim: everything lives in memory and disappears
// with the process.
//
// Events are kept in arrival order; per-idea and per-author indexes hold
// positions into the backing slice, so filtered read-back stays
// oldest-first without sorting.
type MemStore struct {
	mu sync.RWMutex

	events   []model.Event
	byIdea   map[string][]int
	byAuthor map[string][]int

	ideas     map[string]model.Idea
	ideaOrder []string
	viewers   map[string]model.Viewer
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithEventCapacity pre-sizes the event slice.
func WithEventCapacity(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.events = make([]model.Event, 0, n)
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		events:   make([]model.Event, 0, defaultEventCapacity),
		byIdea:   make(map[string][]int),
		byAuthor: make(map[string][]int),
		ideas:    make(map[string]model.Idea),
		viewers:  make(map[string]model.Viewer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds an event to the log.
func (s *MemStore) Append(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := len(s.events)
	s.events = append(s.events, e)
	if e.IdeaID != "" {
		s.byIdea[e.IdeaID] = append(s.byIdea[e.IdeaID], pos)
	}
	if e.AuthorID != "" {
		s.byAuthor[e.AuthorID] = append(s.byAuthor[e.AuthorID], pos)
	}
	return nil
}

// ByIdea returns all events for an idea, oldest first.
func (s *MemStore) ByIdea(_ context.Context, ideaID string) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byIdea[ideaID]), nil
}

// ByAuthor returns all events attributed to an author, oldest first.
func (s *MemStore) ByAuthor(_ context.Context, authorID string) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byAuthor[authorID]), nil
}

// collect copies the indexed events so callers never alias internal state.
// Callers must hold at least the read lock.
func (s *MemStore) collect(positions []int) []model.Event {
	if len(positions) == 0 {
		return nil
	}
	out := make([]model.Event, 0, len(positions))
	for _, p := range positions {
		out = append(out, s.events[p])
	}
	return out
}

// Count returns the total number of stored events.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// PutIdea inserts or replaces idea metadata.
func (s *MemStore) PutIdea(_ context.Context, idea model.Idea) error {
	if idea.ID == "" {
		return fmt.Errorf("put idea: %w", ErrMissingID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idea.Skills = cloneStrings(idea.Skills)
	if _, exists := s.ideas[idea.ID]; !exists {
		s.ideaOrder = append(s.ideaOrder, idea.ID)
	}
	s.ideas[idea.ID] = idea
	return nil
}

// Idea returns a single idea's metadata.
func (s *MemStore) Idea(_ context.Context, id string) (model.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idea, ok := s.ideas[id]
	if !ok {
		return model.Idea{}, fmt.Errorf("idea %q: %w", id, ErrNotFound)
	}
	idea.Skills = cloneStrings(idea.Skills)
	return idea, nil
}

// Ideas returns all ideas in insertion order.
func (s *MemStore) Ideas(_ context.Context) ([]model.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Idea, 0, len(s.ideaOrder))
	for _, id := range s.ideaOrder {
		idea := s.ideas[id]
		idea.Skills = cloneStrings(idea.Skills)
		out = append(out, idea)
	}
	return out, nil
}

// IdeasByAuthor returns the author's ideas in insertion order.
func (s *MemStore) IdeasByAuthor(_ context.Context, authorID string) ([]model.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Idea
	for _, id := range s.ideaOrder {
		idea := s.ideas[id]
		if idea.AuthorID != authorID {
			continue
		}
		idea.Skills = cloneStrings(idea.Skills)
		out = append(out, idea)
	}
	return out, nil
}

// PutViewer inserts or replaces a viewer profile.
func (s *MemStore) PutViewer(_ context.Context, v model.Viewer) error {
	if v.ID == "" {
		return fmt.Errorf("put viewer: %w", ErrMissingID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Interests = cloneStrings(v.Interests)
	v.Following = cloneStrings(v.Following)
	s.viewers[v.ID] = v
	return nil
}

// Viewer returns a viewer profile.
func (s *MemStore) Viewer(_ context.Context, id string) (model.Viewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewers[id]
	if !ok {
		return model.Viewer{}, fmt.Errorf("viewer %q: %w", id, ErrNotFound)
	}
	v.Interests = cloneStrings(v.Interests)
	v.Following = cloneStrings(v.Following)
	return v, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
