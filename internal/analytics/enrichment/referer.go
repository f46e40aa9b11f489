package enrichment

import (
	"net/url"
	"strings"
)

// Referrer is a parsed Referer header. Both fields are nil when the header is
// missing or not an absolute URL.
type Referrer struct {
	URL    *string
	Domain *string
}

// ParseReferrer normalizes the header and derives its domain without "www.".
func ParseReferrer(raw string) Referrer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Referrer{}
	}

	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Hostname() == "" {
		return Referrer{}
	}

	normalized := parsed.String()
	domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	return Referrer{URL: &normalized, Domain: &domain}
}
