package enrichment

import (
	"net"

	"linkgate/internal/conf"
	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	geoip2 "github.com/oschwald/geoip2-golang"
)

// GeoResolver fills location hints from a client IP.
type GeoResolver interface {
	Resolve(ip string) domain.GeoHints
}

// GeoIPResolver resolves IP addresses using a MaxMind City database.
type GeoIPResolver struct {
	db *geoip2.Reader
}

// NewGeoResolver opens the configured database, or returns a resolver that
// knows nothing when none is configured or it cannot be opened.
func NewGeoResolver(c *conf.Data, logger log.Logger) (GeoResolver, func()) {
	if c == nil || c.Geoip == nil || c.Geoip.Path == "" {
		return noopGeoResolver{}, func() {}
	}
	r, err := NewGeoIPResolver(c.Geoip.Path)
	if err != nil {
		log.NewHelper(logger).Warnf("geoip database unavailable, continuing without it: %v", err)
		return noopGeoResolver{}, func() {}
	}
	return r, func() { _ = r.Close() }
}

// NewGeoIPResolver creates a new GeoIPResolver.
// Returns error if the database file cannot be opened or is corrupt.
func NewGeoIPResolver(dbPath string) (*GeoIPResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GeoIPResolver{db: db}, nil
}

// Close closes the GeoIP database reader.
func (g *GeoIPResolver) Close() error {
	return g.db.Close()
}

// Resolve returns empty hints for private or invalid IPs and lookup failures.
func (g *GeoIPResolver) Resolve(ipStr string) domain.GeoHints {
	ip := net.ParseIP(ipStr)
	if ip == nil || ip.IsPrivate() || ip.IsLoopback() {
		return domain.GeoHints{}
	}

	record, err := g.db.City(ip)
	if err != nil {
		return domain.GeoHints{}
	}

	hints := domain.GeoHints{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
	if len(record.Subdivisions) > 0 {
		hints.Region = record.Subdivisions[0].IsoCode
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		hints.Latitude, hints.Longitude = &lat, &lon
	}
	return hints
}

type noopGeoResolver struct{}

func (noopGeoResolver) Resolve(string) domain.GeoHints {
	return domain.GeoHints{}
}

// MergeGeo keeps every field already present in hints and fills the rest
// from fallback.
func MergeGeo(hints, fallback domain.GeoHints) domain.GeoHints {
	if hints.Country == "" {
		hints.Country = fallback.Country
	}
	if hints.City == "" {
		hints.City = fallback.City
	}
	if hints.Region == "" {
		hints.Region = fallback.Region
	}
	if hints.Latitude == nil || hints.Longitude == nil {
		hints.Latitude, hints.Longitude = fallback.Latitude, fallback.Longitude
	}
	return hints
}
