package domain

import (
	"linkgate/internal/domain/valueobject"
)

// Re-export value object types for convenience.
// This allows consumers to import from domain package directly.
type (
	Slug           = valueobject.Slug
	DestinationURL = valueobject.DestinationURL
)

// Re-export value object constructors and helpers.
var (
	NewSlug            = valueobject.NewSlug
	NewDestinationURL  = valueobject.NewDestinationURL
	NormalizeSlug      = valueobject.NormalizeSlug
	IsReservedSlug     = valueobject.IsReservedSlug
	SuggestSlugFromURL = valueobject.SuggestSlugFromURL
)

// Re-export value object constants.
const (
	SlugAlphabet      = valueobject.SlugAlphabet
	DefaultSlugLength = valueobject.DefaultSlugLength
	MinSlugLength     = valueobject.MinSlugLength
	MaxSlugLength     = valueobject.MaxSlugLength
)
