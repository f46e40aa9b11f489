package event

import "time"

var _ Event = LinkClicked{}

const LinkClickedName = "link.clicked"

// LinkClicked carries the request context of a redirect hit to click ingestion.
type LinkClicked struct {
	Base
	Slug        string    `json:"slug"`
	UserAgent   string    `json:"user_agent"`
	Referer     string    `json:"referer"`
	IPAddress   string    `json:"ip_address"`
	Country     string    `json:"country,omitempty"`
	City        string    `json:"city,omitempty"`
	Region      string    `json:"region,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// EventName returns the event name.
func (e LinkClicked) EventName() string {
	return LinkClickedName
}
