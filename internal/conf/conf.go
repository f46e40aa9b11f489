// Package conf holds the service configuration loaded by the kratos config
// package. The type and field names mirror the messages of a kratos-layout
// conf.proto (Server_HTTP, LinkTtl and so on) so that configs/config.yaml and
// the LINKGATE_ environment overrides keep the layout's familiar shape.
package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the service configuration.
type Bootstrap struct {
	Log       *Log       `json:"log"`
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Redirect  *Redirect  `json:"redirect"`
	Slug      *Slug      `json:"slug"`
	Ingestion *Ingestion `json:"ingestion"`
}

// Log configures the zap logger.
type Log struct {
	// Level is a zap level name such as "debug" or "info".
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// Server configures the transports.
type Server struct {
	Http *Server_HTTP `json:"http"`
	Grpc *Server_GRPC `json:"grpc"`
}

// Server_HTTP configures the redirect and management HTTP server.
type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
	// RateLimitPerMinute caps management API calls per client IP. Zero disables it.
	RateLimitPerMinute int `json:"rate_limit_per_minute"`
}

// Server_GRPC configures the gRPC server that serves health checks.
type Server_GRPC struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

// Data configures the backing stores.
type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	Geoip    *Data_GeoIP    `json:"geoip"`
}

// Data_Database selects the SQL driver and its DSN.
type Data_Database struct {
	// Driver is "postgres" or "sqlite3".
	Driver      string `json:"driver"`
	Source      string `json:"source"`
	AutoMigrate bool   `json:"auto_migrate"`
}

// Data_Redis configures the link cache and click counters. An empty Addr
// runs without redis.
type Data_Redis struct {
	Network      string    `json:"network"`
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	Db           int       `json:"db"`
	DialTimeout  *Duration `json:"dial_timeout"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
}

// Data_GeoIP locates the MaxMind database used for click enrichment.
type Data_GeoIP struct {
	// Path to a MaxMind City or Country database. Empty disables lookups.
	Path string `json:"path"`
}

// Redirect configures slug resolution, previews and status page targets.
// LinkTtl bounds cached link views and StatsTtl the cached click stats.
type Redirect struct {
	LinkTtl            *Duration `json:"link_ttl"`
	StatsTtl           *Duration `json:"stats_ttl"`
	PreviewMaxAge      *Duration `json:"preview_max_age"`
	NotFoundPath       string    `json:"not_found_path"`
	DisabledPath       string    `json:"disabled_path"`
	ExpiredPath        string    `json:"expired_path"`
	LimitReachedPath   string    `json:"limit_reached_path"`
	SiteName           string    `json:"site_name"`
	DefaultDescription string    `json:"default_description"`
	// PublicBaseUrl overrides the origin derived from request headers.
	PublicBaseUrl string `json:"public_base_url"`
}

// Slug configures generated slugs. Zero values use the domain defaults.
type Slug struct {
	Length      int `json:"length"`
	MaxAttempts int `json:"max_attempts"`
}

// Ingestion bounds how long and how often a click write is retried.
type Ingestion struct {
	Timeout    *Duration `json:"timeout"`
	MaxRetries int       `json:"max_retries"`
}

// Duration decodes Go duration strings such as "1s" or "24h".
type Duration struct {
	time.Duration
}

// AsDuration returns the value as time.Duration. A nil receiver yields zero.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
