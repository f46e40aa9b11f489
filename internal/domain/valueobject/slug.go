package valueobject

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// SlugAlphabet omits characters that are easy to confuse when read aloud or
	// printed (0/o, 1/l/i).
	SlugAlphabet      = "23456789abcdefghjkmnpqrstuvwxyz"
	DefaultSlugLength = 7
	MinSlugLength     = 3
	MaxSlugLength     = 50
)

var (
	slugRegex           = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugSeparatorRegex  = regexp.MustCompile(`[\s_]+`)
	slugDisallowedRegex = regexp.MustCompile(`[^a-z0-9-]`)
	slugHyphenRunRegex  = regexp.MustCompile(`-{2,}`)
)

// reservedSlugs collide with application routes or are kept for future use.
var reservedSlugs = map[string]struct{}{
	"api": {}, "auth": {}, "dashboard": {}, "admin": {}, "login": {}, "logout": {},
	"signup": {}, "signin": {}, "signout": {}, "register": {}, "links": {},
	"analytics": {}, "settings": {}, "account": {}, "profile": {}, "billing": {},
	"about": {}, "pricing": {}, "terms": {}, "privacy": {}, "help": {}, "support": {},
	"contact": {}, "blog": {}, "docs": {}, "faq": {}, "bio": {}, "qr": {}, "s": {},
	"static": {}, "assets": {}, "images": {}, "public": {}, "_next": {}, "www": {},
	"mail": {}, "email": {}, "app": {}, "404": {}, "healthz": {},
	"link-disabled": {}, "link-expired": {}, "link-limit-reached": {},
}

// Slug is a value object representing the public key of a link.
type Slug struct {
	value string
}

// NewSlug validates an already normalized slug.
func NewSlug(s string) (Slug, error) {
	if err := validation.Validate(s,
		validation.Required.Error("slug is required"),
		validation.RuneLength(MinSlugLength, MaxSlugLength).Error("slug must be 3-50 characters"),
		validation.Match(slugRegex).Error("slug must contain only lowercase letters, digits and hyphens"),
	); err != nil {
		return Slug{}, ErrInvalidSlug
	}
	return Slug{value: s}, nil
}

// String returns the string representation of the Slug.
func (s Slug) String() string {
	return s.value
}

// IsReserved reports whether the slug collides with the reserved-word set.
func (s Slug) IsReserved() bool {
	return IsReservedSlug(s.value)
}

// IsReservedSlug reports whether s, compared case-insensitively, is reserved.
func IsReservedSlug(s string) bool {
	_, ok := reservedSlugs[strings.ToLower(s)]
	return ok
}

// NormalizeSlug turns free-form input into slug form. It returns false when the
// result falls outside the allowed length.
func NormalizeSlug(input string) (string, bool) {
	s := strings.TrimSpace(strings.ToLower(input))
	s = slugSeparatorRegex.ReplaceAllString(s, "-")
	s = slugDisallowedRegex.ReplaceAllString(s, "")
	s = slugHyphenRunRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) < MinSlugLength || len(s) > MaxSlugLength {
		return "", false
	}
	return s, true
}

// SuggestSlugFromURL proposes a slug from the last path segment of rawURL, or
// from the first label of its host when the path yields nothing usable.
func SuggestSlugFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", false
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 {
		last := segments[len(segments)-1]
		if dot := strings.LastIndex(last, "."); dot > 0 {
			last = last[:dot]
		}
		if s, ok := NormalizeSlug(last); ok && !IsReservedSlug(s) {
			return s, true
		}
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	if s, ok := NormalizeSlug(label); ok && !IsReservedSlug(s) {
		return s, true
	}
	return "", false
}
