package domain

import (
	"time"
	"unicode/utf8"

	"linkgate/internal/domain/event"

	"github.com/google/uuid"
)

const (
	MaxPreviewTitleLength       = 70
	MaxPreviewDescriptionLength = 200
)

// Compile-time interface checks
var (
	_ AggregateRoot = (*Link)(nil)
)

// Preview holds the social-preview metadata of a link. Nil means unset.
type Preview struct {
	Title       *string
	Description *string
	ImageURL    *string
}

// Validate checks the preview lengths.
func (p Preview) Validate() error {
	if p.Title != nil && utf8.RuneCountInString(*p.Title) > MaxPreviewTitleLength {
		return ErrInvalidPreview
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxPreviewDescriptionLength {
		return ErrInvalidPreview
	}
	return nil
}

// LinkSettings are the mutable settings of a link.
type LinkSettings struct {
	IsActive   bool
	ExpiresAt  *time.Time
	ClickLimit *int64
	Preview    Preview
}

// Validate checks invariants that do not depend on the store.
func (s LinkSettings) Validate() error {
	if s.ClickLimit != nil && *s.ClickLimit <= 0 {
		return ErrInvalidClickLimit
	}
	return s.Preview.Validate()
}

// Link is the aggregate root representing a short link.
type Link struct {
	id          string
	slug        Slug
	destination DestinationURL
	settings    LinkSettings
	totalClicks int64
	createdAt   time.Time
	updatedAt   time.Time

	events []event.Event
}

// NewLink creates a link with a fresh identifier. It raises a LinkCreated event.
func NewLink(slug Slug, destination DestinationURL, settings LinkSettings) *Link {
	now := time.Now().UTC()
	l := &Link{
		id:          uuid.NewString(),
		slug:        slug,
		destination: destination,
		settings:    settings,
		createdAt:   now,
		updatedAt:   now,
		events:      make([]event.Event, 0),
	}
	l.addEvent(event.NewLinkCreated(l.id, slug.String(), destination.String(), settings.ExpiresAt, settings.ClickLimit))
	return l
}

// ReconstructLink reconstructs a link from persistence.
func ReconstructLink(
	id string,
	slug Slug,
	destination DestinationURL,
	settings LinkSettings,
	totalClicks int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Link {
	return &Link{
		id:          id,
		slug:        slug,
		destination: destination,
		settings:    settings,
		totalClicks: totalClicks,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the link's unique identifier.
func (l *Link) ID() string {
	return l.id
}

// Slug returns the link's slug.
func (l *Link) Slug() Slug {
	return l.slug
}

// Destination returns the redirect target.
func (l *Link) Destination() DestinationURL {
	return l.destination
}

// Settings returns the mutable settings.
func (l *Link) Settings() LinkSettings {
	return l.settings
}

// TotalClicks returns the stored click counter.
func (l *Link) TotalClicks() int64 {
	return l.totalClicks
}

// CreatedAt returns when the link was created.
func (l *Link) CreatedAt() time.Time {
	return l.createdAt
}

// UpdatedAt returns when the link was last updated.
func (l *Link) UpdatedAt() time.Time {
	return l.updatedAt
}

// Update replaces the destination and settings. It raises a LinkUpdated event.
func (l *Link) Update(destination DestinationURL, settings LinkSettings) {
	l.destination = destination
	l.settings = settings
	l.updatedAt = time.Now().UTC()
	l.addEvent(event.NewLinkUpdated(l.id, l.slug.String(), destination.String(), settings.IsActive))
}

// MarkDeleted raises a LinkDeleted event.
func (l *Link) MarkDeleted() {
	l.addEvent(event.NewLinkDeleted(l.id, l.slug.String()))
}

// View derives the cached projection of the link.
func (l *Link) View() *CachedLinkView {
	return &CachedLinkView{
		ID:             l.id,
		DestinationURL: l.destination.String(),
		IsActive:       l.settings.IsActive,
		Title:          l.settings.Preview.Title,
		Description:    l.settings.Preview.Description,
		ImageURL:       l.settings.Preview.ImageURL,
		ExpiresAt:      l.settings.ExpiresAt,
		ClickLimit:     l.settings.ClickLimit,
		TotalClicks:    l.totalClicks,
	}
}

// Eligibility reports whether the link may be redirected at now.
func (l *Link) Eligibility(now time.Time) Eligibility {
	return l.View().Eligibility(now)
}

func (l *Link) addEvent(e event.Event) {
	l.events = append(l.events, e)
}

// Events returns all uncommitted domain events.
func (l *Link) Events() []event.Event {
	return l.events
}

// ClearEvents clears all domain events after they have been dispatched.
func (l *Link) ClearEvents() {
	l.events = make([]event.Event, 0)
}
