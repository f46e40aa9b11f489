package valueobject

import "errors"

var (
	ErrInvalidURL   = errors.New("invalid destination url")
	ErrInvalidSlug  = errors.New("invalid slug format")
	ErrReservedSlug = errors.New("slug is reserved")
)
