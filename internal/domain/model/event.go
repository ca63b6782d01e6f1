// Package model contains domain models passed between layers.
package model

import "time"

// EventType enumerates the engagement event kinds accepted by the log.
type EventType string

const (
	EventSave           EventType = "save"
	EventUnsave         EventType = "unsave"
	EventCopy           EventType = "copy"
	EventBuild          EventType = "build"
	EventComment        EventType = "comment"
	EventPromptFeedback EventType = "prompt_feedback"
)

// Known reports whether t is a recognized event type. The scoring engines
// skip unrecognized types instead of failing the whole computation.
func (t EventType) Known() bool {
	switch t {
	case EventSave, EventUnsave, EventCopy, EventBuild, EventComment, EventPromptFeedback:
		return true
	}
	return false
}

// Feedback is the outcome reported with a prompt_feedback event.
type Feedback string

const (
	FeedbackWorked    Feedback = "worked"
	FeedbackDidntWork Feedback = "didnt_work"
)

// Event is an immutable engagement fact. Events are only ever appended,
// never mutated or deleted, so every derived score is a pure projection of
// the log.
type Event struct {
	EventID        string    // unique id for idempotency
	Type           EventType // what the actor did
	IdeaID         string    // subject idea
	AuthorID       string    // empty when the idea is unattributed
	ActorID        string    // empty for anonymous actors
	Feedback       Feedback  // set only on prompt_feedback events
	FeedbackReason string    // optional short code accompanying negative feedback
	TS             time.Time // when the action happened
}

// Positive reports whether the event counts as a positive quality signal.
func (e Event) Positive() bool {
	switch e.Type {
	case EventSave, EventBuild:
		return true
	case EventPromptFeedback:
		return e.Feedback == FeedbackWorked
	}
	return false
}

// Negative reports whether the event counts as a negative quality signal.
func (e Event) Negative() bool {
	switch e.Type {
	case EventUnsave:
		return true
	case EventPromptFeedback:
		return e.Feedback == FeedbackDidntWork
	}
	return false
}
