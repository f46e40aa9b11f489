package domain

import (
	"errors"

	"linkgate/internal/domain/valueobject"
)

var (
	ErrLinkNotFound      = errors.New("link not found")
	ErrSlugTaken         = errors.New("slug already taken")
	ErrInvalidClickLimit = errors.New("click limit must be positive")
	ErrInvalidPreview    = errors.New("invalid preview metadata")
	ErrDuplicateClick    = errors.New("click already recorded")

	// Re-export value object errors for convenience.
	ErrInvalidURL   = valueobject.ErrInvalidURL
	ErrInvalidSlug  = valueobject.ErrInvalidSlug
	ErrReservedSlug = valueobject.ErrReservedSlug
)
