package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ideastack/ember/internal/domain/model"
)

// GormStore implements Store over a relational backend through GORM. The
// sqlite driver covers the single-node deployment; the row types keep to
// plain columns so other dialects would migrate cleanly.
type GormStore struct {
	db *gorm.DB
}

// eventRow is the persisted shape of a model.Event. The surrogate key
// preserves append order; event_id stays unique as the idempotency key.
type eventRow struct {
	ID             uint      `gorm:"primaryKey"`
	EventID        string    `gorm:"uniqueIndex;size:64"`
	Type           string    `gorm:"size:32"`
	IdeaID         string    `gorm:"index;size:64"`
	AuthorID       string    `gorm:"index;size:64"`
	ActorID        string    `gorm:"size:64"`
	Feedback       string    `gorm:"size:16"`
	FeedbackReason string    `gorm:"size:64"`
	TS             time.Time `gorm:"index"`
}

func (eventRow) TableName() string { return "engagement_events" }

type ideaRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	AuthorID    string `gorm:"index;size:64"`
	Category    string `gorm:"size:64"`
	Skills      string // comma-joined
	PublishedAt time.Time `gorm:"index"`
	ViewCount   int
	SaveCount   int
}

func (ideaRow) TableName() string { return "ideas" }

type viewerRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Interests string // comma-joined
	Following string // comma-joined
}

func (viewerRow) TableName() string { return "viewers" }

// NewGormStore opens (or creates) the sqlite database at path and migrates
// the schema.
func NewGormStore(_ context.Context, path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&eventRow{}, &ideaRow{}, &viewerRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Append adds an event to the log.
func (s *GormStore) Append(ctx context.Context, e model.Event) error {
	row := eventRow{
		EventID:        e.EventID,
		Type:           string(e.Type),
		IdeaID:         e.IdeaID,
		AuthorID:       e.AuthorID,
		ActorID:        e.ActorID,
		Feedback:       string(e.Feedback),
		FeedbackReason: e.FeedbackReason,
		TS:             e.TS,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ByIdea returns all events for an idea, oldest first.
func (s *GormStore) ByIdea(ctx context.Context, ideaID string) ([]model.Event, error) {
	return s.queryEvents(ctx, "idea_id = ?", ideaID)
}

// ByAuthor returns all events attributed to an author, oldest first.
func (s *GormStore) ByAuthor(ctx context.Context, authorID string) ([]model.Event, error) {
	return s.queryEvents(ctx, "author_id = ?", authorID)
}

func (s *GormStore) queryEvents(ctx context.Context, cond string, arg string) ([]model.Event, error) {
	var rows []eventRow
	err := s.db.WithContext(ctx).
		Where(cond, arg).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Event{
			EventID:        r.EventID,
			Type:           model.EventType(r.Type),
			IdeaID:         r.IdeaID,
			AuthorID:       r.AuthorID,
			ActorID:        r.ActorID,
			Feedback:       model.Feedback(r.Feedback),
			FeedbackReason: r.FeedbackReason,
			TS:             r.TS,
		})
	}
	return out, nil
}

// Count returns the total number of stored events.
func (s *GormStore) Count(ctx context.Context) int {
	var n int64
	if err := s.db.WithContext(ctx).Model(&eventRow{}).Count(&n).Error; err != nil {
		return 0
	}
	return int(n)
}

// PutIdea inserts or replaces idea metadata.
func (s *GormStore) PutIdea(ctx context.Context, idea model.Idea) error {
	if idea.ID == "" {
		return fmt.Errorf("put idea: %w", ErrMissingID)
	}
	row := ideaRow{
		ID:          idea.ID,
		AuthorID:    idea.AuthorID,
		Category:    idea.Category,
		Skills:      joinList(idea.Skills),
		PublishedAt: idea.PublishedAt,
		ViewCount:   idea.ViewCount,
		SaveCount:   idea.SaveCount,
	}
	err := s.db.WithContext(ctx).
		Where(ideaRow{ID: idea.ID}).
		Assign(map[string]interface{}{
			"author_id":    row.AuthorID,
			"category":     row.Category,
			"skills":       row.Skills,
			"published_at": row.PublishedAt,
			"view_count":   row.ViewCount,
			"save_count":   row.SaveCount,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("put idea: %w", err)
	}
	return nil
}

// Idea returns a single idea's metadata.
func (s *GormStore) Idea(ctx context.Context, id string) (model.Idea, error) {
	var row ideaRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Idea{}, fmt.Errorf("idea %q: %w", id, ErrNotFound)
		}
		return model.Idea{}, fmt.Errorf("load idea: %w", err)
	}
	return ideaFromRow(row), nil
}

// Ideas returns all ideas ordered by publish time.
func (s *GormStore) Ideas(ctx context.Context) ([]model.Idea, error) {
	var rows []ideaRow
	if err := s.db.WithContext(ctx).Order("published_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	out := make([]model.Idea, 0, len(rows))
	for _, r := range rows {
		out = append(out, ideaFromRow(r))
	}
	return out, nil
}

// IdeasByAuthor returns the author's ideas ordered by publish time.
func (s *GormStore) IdeasByAuthor(ctx context.Context, authorID string) ([]model.Idea, error) {
	var rows []ideaRow
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("published_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list ideas by author: %w", err)
	}
	var out []model.Idea
	for _, r := range rows {
		out = append(out, ideaFromRow(r))
	}
	return out, nil
}

// PutViewer inserts or replaces a viewer profile.
func (s *GormStore) PutViewer(ctx context.Context, v model.Viewer) error {
	if v.ID == "" {
		return fmt.Errorf("put viewer: %w", ErrMissingID)
	}
	row := viewerRow{ID: v.ID, Interests: joinList(v.Interests), Following: joinList(v.Following)}
	err := s.db.WithContext(ctx).
		Where(viewerRow{ID: v.ID}).
		Assign(map[string]interface{}{
			"interests": row.Interests,
			"following": row.Following,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("put viewer: %w", err)
	}
	return nil
}

// Viewer returns a viewer profile.
func (s *GormStore) Viewer(ctx context.Context, id string) (model.Viewer, error) {
	var row viewerRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Viewer{}, fmt.Errorf("viewer %q: %w", id, ErrNotFound)
		}
		return model.Viewer{}, fmt.Errorf("load viewer: %w", err)
	}
	return model.Viewer{ID: row.ID, Interests: splitList(row.Interests), Following: splitList(row.Following)}, nil
}

func ideaFromRow(r ideaRow) model.Idea {
	return model.Idea{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		Category:    r.Category,
		Skills:      splitList(r.Skills),
		PublishedAt: r.PublishedAt,
		ViewCount:   r.ViewCount,
		SaveCount:   r.SaveCount,
	}
}

func joinList(in []string) string { return strings.Join(in, ",") }

func splitList(in string) []string {
	if in == "" {
		return nil
	}
	return strings.Split(in, ",")
}
