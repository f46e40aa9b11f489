package valueobject

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DestinationURL is a value object representing the target of a redirect.
// It is immutable and validated on creation.
type DestinationURL struct {
	value  string
	parsed *url.URL
}

// NewDestinationURL creates a DestinationURL, accepting only absolute http(s) URLs.
func NewDestinationURL(rawURL string) (DestinationURL, error) {
	if err := validation.Validate(rawURL,
		validation.Required.Error("URL is required"),
		validation.Length(1, 2048).Error("URL is too long"),
		is.URL.Error("invalid URL format"),
	); err != nil {
		return DestinationURL{}, ErrInvalidURL
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return DestinationURL{}, ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return DestinationURL{}, ErrInvalidURL
	}

	if parsed.Host == "" {
		return DestinationURL{}, ErrInvalidURL
	}

	return DestinationURL{
		value:  rawURL,
		parsed: parsed,
	}, nil
}

// String returns the string representation of the DestinationURL.
func (d DestinationURL) String() string {
	return d.value
}

// Hostname returns the host without port.
func (d DestinationURL) Hostname() string {
	if d.parsed == nil {
		return ""
	}
	return d.parsed.Hostname()
}
