package domain

import (
	"context"
	"time"
)

// LinkRepository defines the persistence operations for links.
type LinkRepository interface {
	// Create inserts a new link. Returns ErrSlugTaken if the slug is in use.
	Create(ctx context.Context, link *Link) error

	// Update persists the destination and settings of an existing link.
	// Returns ErrLinkNotFound if no row matched.
	Update(ctx context.Context, link *Link) error

	// Delete removes a link and its clicks.
	Delete(ctx context.Context, id string) error

	// FindByID returns nil if not found.
	FindByID(ctx context.Context, id string) (*Link, error)

	// FindBySlug returns nil if not found.
	FindBySlug(ctx context.Context, slug string) (*Link, error)

	// ExistsBySlug checks if a slug is already stored.
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// List returns a page of links, newest first, and the total match count.
	List(ctx context.Context, query ListQuery) ([]*Link, int, error)

	// IncrementTotalClicks atomically adds one to the click counter.
	// Returns ErrLinkNotFound if no row matched.
	IncrementTotalClicks(ctx context.Context, id string) error
}

// ListQuery selects a page of links.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

// ClickRepository defines the persistence operations for click events.
type ClickRepository interface {
	// Append inserts a click event. Returns ErrDuplicateClick if its ID is stored
	// and ErrLinkNotFound if its link does not exist.
	Append(ctx context.Context, click *ClickEvent) error

	// Summarize aggregates the non-bot clicks of a link since the given time.
	Summarize(ctx context.Context, linkID string, since time.Time) (*ClickSummary, error)
}

// LinkCache stores CachedLinkView projections keyed by slug.
// Get returns nil, nil on a miss.
type LinkCache interface {
	Get(ctx context.Context, slug string) (*CachedLinkView, error)
	Set(ctx context.Context, slug string, view *CachedLinkView, ttl time.Duration) error
	Invalidate(ctx context.Context, slug string) error
}

// ClickCounter keeps standalone realtime counters outside the link views.
type ClickCounter interface {
	Incr(ctx context.Context, linkID string) (int64, error)
	Get(ctx context.Context, linkID string) (int64, error)
}

// ClickDispatcher hands a click to ingestion without blocking the caller.
type ClickDispatcher interface {
	Dispatch(req ClickRequest)
}
