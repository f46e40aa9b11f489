package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact about a link. Events are published after the change that
// raised them is committed.
type Event interface {
	EventID() string
	EventName() string
	OccurredAt() time.Time
	// AggregateID is the id of the link the event belongs to.
	AggregateID() string
}

// Base carries the fields shared by every link event. IDs are UUIDv7, so they
// sort by creation time.
type Base struct {
	ID     string    `json:"event_id"`
	LinkID string    `json:"link_id"`
	At     time.Time `json:"occurred_at"`
}

// NewBase stamps an event for linkID at the current time.
func NewBase(linkID string) Base {
	return NewBaseAt(linkID, time.Time{})
}

// NewBaseAt stamps an event for linkID that happened at t. A zero t means now.
func NewBaseAt(linkID string, t time.Time) Base {
	if t.IsZero() {
		t = time.Now()
	}
	return Base{
		ID:     uuid.Must(uuid.NewV7()).String(),
		LinkID: linkID,
		At:     t.UTC(),
	}
}

func (e Base) EventID() string {
	return e.ID
}

func (e Base) OccurredAt() time.Time {
	return e.At
}

func (e Base) AggregateID() string {
	return e.LinkID
}
