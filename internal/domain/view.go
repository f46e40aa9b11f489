package domain

import "time"

// Eligibility is the outcome of validating a link for redirect.
type Eligibility int

const (
	Eligible Eligibility = iota
	Disabled
	Expired
	LimitReached
)

func (e Eligibility) String() string {
	switch e {
	case Eligible:
		return "eligible"
	case Disabled:
		return "disabled"
	case Expired:
		return "expired"
	case LimitReached:
		return "limit_reached"
	default:
		return "unknown"
	}
}

// CachedLinkView is the read-optimized projection of a Link stored in the cache.
// TotalClicks is a snapshot taken when the view was derived.
type CachedLinkView struct {
	ID             string     `msgpack:"id"`
	DestinationURL string     `msgpack:"destination_url"`
	IsActive       bool       `msgpack:"is_active"`
	Title          *string    `msgpack:"title"`
	Description    *string    `msgpack:"description"`
	ImageURL       *string    `msgpack:"image_url"`
	ExpiresAt      *time.Time `msgpack:"expires_at"`
	ClickLimit     *int64     `msgpack:"click_limit"`
	TotalClicks    int64      `msgpack:"total_clicks"`
}

// Eligibility checks, in order, the active flag, the expiry and the click limit.
func (v *CachedLinkView) Eligibility(now time.Time) Eligibility {
	if !v.IsActive {
		return Disabled
	}
	if v.ExpiresAt != nil && v.ExpiresAt.Before(now) {
		return Expired
	}
	if v.ClickLimit != nil && v.TotalClicks >= *v.ClickLimit {
		return LimitReached
	}
	return Eligible
}
