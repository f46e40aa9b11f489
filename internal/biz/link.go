package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkgate/internal/conf"
	"linkgate/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	maxCreateAttempts = 3
	defaultPageSize   = 20
	maxPageSize       = 100
)

// StatsPeriods maps the accepted stats periods to their look-back window.
var StatsPeriods = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// ErrInvalidPeriod is returned for a stats period outside StatsPeriods.
var ErrInvalidPeriod = errors.New("invalid stats period")

// ErrInvalidPage is returned for negative or oversized paging parameters.
var ErrInvalidPage = errors.New("invalid page parameters")

// CreateLinkInput describes a new link. A nil Slug means generate one, or
// derive it from the destination when SuggestSlug is set.
type CreateLinkInput struct {
	DestinationURL string
	Slug           *string
	SuggestSlug    bool
	Settings       domain.LinkSettings
}

// UpdateLinkInput replaces the mutable fields of a link.
type UpdateLinkInput struct {
	DestinationURL string
	Settings       domain.LinkSettings
}

// LinkPage is one page of a link listing.
type LinkPage struct {
	Links    []*domain.Link
	Total    int
	Page     int
	PageSize int
}

// LinkStats is the analytics summary of a link.
type LinkStats struct {
	Link    *domain.Link
	Period  string
	Since   time.Time
	Summary *domain.ClickSummary
	// Realtime is the standalone counter; it may lag or lead the stored total.
	Realtime int64
}

// LinkUsecase is the management side of links. Every mutation invalidates the
// cached view of the slug before returning.
type LinkUsecase struct {
	links       domain.LinkRepository
	clicks      domain.ClickRepository
	cache       domain.LinkCache
	counter     domain.ClickCounter
	uow         domain.UnitOfWork
	slugs       *SlugGenerator
	slugLength  int
	maxAttempts int
	now         func() time.Time
	log         *log.Helper
}

// NewLinkUsecase creates a LinkUsecase.
func NewLinkUsecase(
	c *conf.Slug,
	links domain.LinkRepository,
	clicks domain.ClickRepository,
	cache domain.LinkCache,
	counter domain.ClickCounter,
	uow domain.UnitOfWork,
	slugs *SlugGenerator,
	logger log.Logger,
) *LinkUsecase {
	uc := &LinkUsecase{
		links:       links,
		clicks:      clicks,
		cache:       cache,
		counter:     counter,
		uow:         uow,
		slugs:       slugs,
		slugLength:  domain.DefaultSlugLength,
		maxAttempts: defaultSlugAttempts,
		now:         time.Now,
		log:         log.NewHelper(log.With(logger, "module", "biz/link")),
	}
	if c != nil {
		if c.Length > 0 {
			uc.slugLength = c.Length
		}
		if c.MaxAttempts > 0 {
			uc.maxAttempts = c.MaxAttempts
		}
	}
	return uc
}

// Create stores a new link.
func (uc *LinkUsecase) Create(ctx context.Context, in CreateLinkInput) (*domain.Link, error) {
	dest, err := domain.NewDestinationURL(in.DestinationURL)
	if err != nil {
		return nil, err
	}
	if err := in.Settings.Validate(); err != nil {
		return nil, err
	}

	if in.Slug != nil {
		slug, err := customSlug(*in.Slug)
		if err != nil {
			return nil, err
		}
		return uc.insert(ctx, slug, dest, in.Settings)
	}

	if in.SuggestSlug {
		if suggestion, ok := domain.SuggestSlugFromURL(dest.String()); ok {
			available, err := uc.slugs.IsAvailable(ctx, suggestion)
			if err != nil {
				return nil, err
			}
			if available {
				slug, err := domain.NewSlug(suggestion)
				if err != nil {
					return nil, err
				}
				link, err := uc.insert(ctx, slug, dest, in.Settings)
				if !errors.Is(err, domain.ErrSlugTaken) {
					return link, err
				}
			}
		}
		uc.log.WithContext(ctx).Debugf("no usable slug suggestion for %s, generating one", dest)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		generated, err := uc.slugs.GenerateUniqueSlug(ctx, uc.slugLength, uc.maxAttempts)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		slug, err := domain.NewSlug(generated)
		if err != nil {
			return nil, err
		}
		link, err := uc.insert(ctx, slug, dest, in.Settings)
		if errors.Is(err, domain.ErrSlugTaken) {
			uc.log.WithContext(ctx).Warnf("generated slug %s was taken concurrently, retrying", generated)
			continue
		}
		return link, err
	}
	return nil, domain.ErrSlugTaken
}

func customSlug(raw string) (domain.Slug, error) {
	normalized, ok := domain.NormalizeSlug(raw)
	if !ok {
		return domain.Slug{}, domain.ErrInvalidSlug
	}
	if domain.IsReservedSlug(normalized) {
		return domain.Slug{}, domain.ErrReservedSlug
	}
	return domain.NewSlug(normalized)
}

func (uc *LinkUsecase) insert(ctx context.Context, slug domain.Slug, dest domain.DestinationURL, settings domain.LinkSettings) (*domain.Link, error) {
	link := domain.NewLink(slug, dest, settings)
	if err := uc.uow.Do(ctx, func(ctx context.Context) error {
		return uc.links.Create(ctx, link)
	}, link); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("created link %s -> %s", slug, dest)
	// The link is committed; a stale entry under a reused slug only needs a log line.
	if err := uc.invalidate(ctx, slug.String()); err != nil {
		uc.log.WithContext(ctx).Warn(err)
	}
	return link, nil
}

// Get returns the link with the given ID or ErrLinkNotFound.
func (uc *LinkUsecase) Get(ctx context.Context, id string) (*domain.Link, error) {
	link, err := uc.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrLinkNotFound
	}
	return link, nil
}

// Update replaces the destination and settings of a link.
func (uc *LinkUsecase) Update(ctx context.Context, id string, in UpdateLinkInput) (*domain.Link, error) {
	dest, err := domain.NewDestinationURL(in.DestinationURL)
	if err != nil {
		return nil, err
	}
	if err := in.Settings.Validate(); err != nil {
		return nil, err
	}

	link, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	link.Update(dest, in.Settings)

	if err := uc.uow.Do(ctx, func(ctx context.Context) error {
		return uc.links.Update(ctx, link)
	}, link); err != nil {
		return nil, err
	}

	if err := uc.invalidate(ctx, link.Slug().String()); err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link together with its clicks.
func (uc *LinkUsecase) Delete(ctx context.Context, id string) error {
	link, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	link.MarkDeleted()

	if err := uc.uow.Do(ctx, func(ctx context.Context) error {
		return uc.links.Delete(ctx, link.ID())
	}, link); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Infof("deleted link %s", link.Slug())
	return uc.invalidate(ctx, link.Slug().String())
}

// List returns a page of links matching the search term.
func (uc *LinkUsecase) List(ctx context.Context, q domain.ListQuery) (*LinkPage, error) {
	if err := validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.PageSize, validation.Min(0), validation.Max(maxPageSize)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	links, total, err := uc.links.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &LinkPage{Links: links, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// Stats summarizes the human clicks of a link over period.
func (uc *LinkUsecase) Stats(ctx context.Context, id, period string) (*LinkStats, error) {
	if period == "" {
		period = "7d"
	}
	window, ok := StatsPeriods[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	link, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	since := uc.now().Add(-window)
	summary, err := uc.clicks.Summarize(ctx, id, since)
	if err != nil {
		return nil, err
	}

	realtime, err := uc.counter.Get(ctx, id)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("read realtime counter of %s: %v", id, err)
	}

	return &LinkStats{
		Link:     link,
		Period:   period,
		Since:    since,
		Summary:  summary,
		Realtime: realtime,
	}, nil
}

func (uc *LinkUsecase) invalidate(ctx context.Context, slug string) error {
	if err := uc.cache.Invalidate(ctx, slug); err != nil {
		return fmt.Errorf("invalidate cached link %s: %w", slug, err)
	}
	return nil
}
