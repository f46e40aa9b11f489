package domain

import "time"

// DeviceType is the coarse device class of a click.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

// GeoHints is the optional location of a client. Empty strings and nil
// coordinates mean unknown.
type GeoHints struct {
	Country   string
	City      string
	Region    string
	Latitude  *float64
	Longitude *float64
}

// ClickRequest is the request context captured by the resolver for ingestion.
type ClickRequest struct {
	LinkID      string
	Slug        string
	UserAgent   string
	Referer     string
	IPAddress   string
	Geo         GeoHints
	RequestedAt time.Time
}

// ClickEvent is the append-only record of a single hit.
type ClickEvent struct {
	ID             string
	LinkID         string
	Timestamp      time.Time
	Country        *string
	City           *string
	Region         *string
	Latitude       *float64
	Longitude      *float64
	Device         DeviceType
	DeviceName     *string
	Browser        *string
	OS             *string
	Referrer       *string
	ReferrerDomain *string
	IsBot          bool
}

// CountBucket is one group of an aggregation.
type CountBucket struct {
	Key   string
	Count int64
}

// ClickSummary aggregates the non-bot clicks of a link over a period.
type ClickSummary struct {
	Total      int64
	ByDay      []CountBucket
	ByCountry  []CountBucket
	ByDevice   []CountBucket
	ByBrowser  []CountBucket
	ByReferrer []CountBucket
}
