package biz

import (
	"context"
	"errors"

	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultSlugAttempts = 5

// ErrSlugSpaceExhausted is returned when no free slug fits the maximum length.
var ErrSlugSpaceExhausted = errors.New("no free slug within the maximum length")

// SlugGenerator draws random slugs that are neither reserved nor stored.
type SlugGenerator struct {
	links  domain.LinkRepository
	random func(alphabet string, size int) (string, error)
	log    *log.Helper
}

// NewSlugGenerator creates a SlugGenerator backed by the link store.
func NewSlugGenerator(links domain.LinkRepository, logger log.Logger) *SlugGenerator {
	return &SlugGenerator{
		links:  links,
		random: gonanoid.Generate,
		log:    log.NewHelper(logger),
	}
}

// GenerateUniqueSlug tries maxAttempts candidates of the given length and then
// retries with a length one longer. Growth stops at domain.MaxSlugLength: once
// every length up to that bound has been tried it returns
// ErrSlugSpaceExhausted, so a generated slug never breaks the slug length
// rule. Otherwise it only fails on store errors.
func (g *SlugGenerator) GenerateUniqueSlug(ctx context.Context, length, maxAttempts int) (string, error) {
	if length <= 0 {
		length = domain.DefaultSlugLength
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultSlugAttempts
	}
	if length > domain.MaxSlugLength {
		return "", ErrSlugSpaceExhausted
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := g.random(domain.SlugAlphabet, length)
		if err != nil {
			return "", err
		}
		available, err := g.IsAvailable(ctx, candidate)
		if err != nil {
			return "", err
		}
		if available {
			return candidate, nil
		}
	}

	g.log.WithContext(ctx).Warnf("no free slug of length %d after %d attempts, trying length %d", length, maxAttempts, length+1)
	return g.GenerateUniqueSlug(ctx, length+1, maxAttempts)
}

// IsAvailable reports whether slug is neither reserved nor stored.
func (g *SlugGenerator) IsAvailable(ctx context.Context, slug string) (bool, error) {
	if domain.IsReservedSlug(slug) {
		return false, nil
	}
	exists, err := g.links.ExistsBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
