package event

import "time"

// Compile-time interface checks
var (
	_ Event = LinkCreated{}
	_ Event = LinkUpdated{}
	_ Event = LinkDeleted{}
)

const (
	LinkCreatedName = "link.created"
	LinkUpdatedName = "link.updated"
	LinkDeletedName = "link.deleted"
)

// LinkCreated is raised when a new link is stored.
type LinkCreated struct {
	Base
	Slug           string     `json:"slug"`
	DestinationURL string     `json:"destination_url"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClickLimit     *int64     `json:"click_limit,omitempty"`
}

// NewLinkCreated creates a new LinkCreated event.
func NewLinkCreated(linkID, slug, destinationURL string, expiresAt *time.Time, clickLimit *int64) LinkCreated {
	return LinkCreated{
		Base:           NewBase(linkID),
		Slug:           slug,
		DestinationURL: destinationURL,
		ExpiresAt:      expiresAt,
		ClickLimit:     clickLimit,
	}
}

// EventName returns the event name.
func (e LinkCreated) EventName() string {
	return LinkCreatedName
}

// LinkUpdated is raised when the mutable settings of a link change.
type LinkUpdated struct {
	Base
	Slug           string `json:"slug"`
	DestinationURL string `json:"destination_url"`
	IsActive       bool   `json:"is_active"`
}

// NewLinkUpdated creates a new LinkUpdated event.
func NewLinkUpdated(linkID, slug, destinationURL string, isActive bool) LinkUpdated {
	return LinkUpdated{
		Base:           NewBase(linkID),
		Slug:           slug,
		DestinationURL: destinationURL,
		IsActive:       isActive,
	}
}

// EventName returns the event name.
func (e LinkUpdated) EventName() string {
	return LinkUpdatedName
}

// LinkDeleted is raised when a link is removed.
type LinkDeleted struct {
	Base
	Slug string `json:"slug"`
}

// NewLinkDeleted creates a new LinkDeleted event.
func NewLinkDeleted(linkID, slug string) LinkDeleted {
	return LinkDeleted{
		Base: NewBase(linkID),
		Slug: slug,
	}
}

// EventName returns the event name.
func (e LinkDeleted) EventName() string {
	return LinkDeletedName
}
