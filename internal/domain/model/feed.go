package model

import "time"

// Idea is the catalog metadata the feed builder joins with quality scores.
type Idea struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Category    string    `json:"category"`
	Skills      []string  `json:"skills"`
	PublishedAt time.Time `json:"published_at"`
	ViewCount   int       `json:"view_count"`
	SaveCount   int       `json:"save_count"`
}

// FeedCandidate pairs idea metadata with its computed quality score. It is
// constructed at ranking time and never persisted.
type FeedCandidate struct {
	ID           string    `json:"id"`
	PublishedAt  time.Time `json:"published_at"`
	Category     string    `json:"category"`
	Skills       []string  `json:"skills"`
	AuthorID     string    `json:"author_id"`
	SaveCount    int       `json:"save_count"`
	ViewCount    int       `json:"view_count"`
	QualityScore float64   `json:"quality_score"`
}

// Viewer is the ranking context for an authenticated viewer. A nil viewer
// means anonymous: no relevance signal is available.
type Viewer struct {
	ID        string   `json:"id"`
	Interests []string `json:"interests"` // categories and skills the viewer engages with
	Following []string `json:"following"` // author ids the viewer follows
}
