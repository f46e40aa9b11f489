package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkgate/internal/conf"
	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultLinkTTL       = 24 * time.Hour
	defaultPreviewMaxAge = time.Hour

	DefaultNotFoundPath     = "/404"
	DefaultDisabledPath     = "/link-disabled"
	DefaultExpiredPath      = "/link-expired"
	DefaultLimitReachedPath = "/link-limit-reached"
)

// Outcome is the decision taken for a short-link request.
type Outcome int

const (
	// OutcomePassThrough hands the request to the rest of the application.
	OutcomePassThrough Outcome = iota
	OutcomeRedirect
	OutcomePreview
	OutcomeNotFound
	OutcomeDisabled
	OutcomeExpired
	OutcomeLimitReached
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassThrough:
		return "pass_through"
	case OutcomeRedirect:
		return "redirect"
	case OutcomePreview:
		return "preview"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeExpired:
		return "expired"
	case OutcomeLimitReached:
		return "limit_reached"
	default:
		return "unknown"
	}
}

// ResolveRequest carries what the resolver needs from an inbound request.
type ResolveRequest struct {
	Slug      string
	UserAgent string
	Referer   string
	IPAddress string
	Geo       domain.GeoHints
	// Origin is the scheme and host used for absolute preview URLs.
	Origin string
}

// Resolution is the response the transport should produce.
// Location is set for redirects, Body and CacheControl for previews and
// Click only for human redirects.
type Resolution struct {
	Outcome      Outcome
	Location     string
	Body         []byte
	CacheControl string
	Bot          string
	Click        *domain.ClickRequest
}

// StatusTargets are the pages ineligible links redirect to.
type StatusTargets struct {
	NotFound     string
	Disabled     string
	Expired      string
	LimitReached string
}

// Resolver turns a slug into a redirect, a preview page or a status page.
type Resolver struct {
	cache         domain.LinkCache
	links         domain.LinkRepository
	bots          *BotDetector
	preview       *PreviewRenderer
	targets       StatusTargets
	linkTTL       time.Duration
	previewMaxAge time.Duration
	now           func() time.Time
	log           *log.Helper
}

// NewResolver creates a Resolver.
func NewResolver(c *conf.Redirect, cache domain.LinkCache, links domain.LinkRepository, bots *BotDetector, preview *PreviewRenderer, logger log.Logger) *Resolver {
	r := &Resolver{
		cache:         cache,
		links:         links,
		bots:          bots,
		preview:       preview,
		targets:       StatusTargetsFromConfig(c),
		linkTTL:       defaultLinkTTL,
		previewMaxAge: defaultPreviewMaxAge,
		now:           time.Now,
		log:           log.NewHelper(log.With(logger, "module", "biz/resolver")),
	}
	if c != nil {
		if ttl := c.LinkTtl.AsDuration(); ttl > 0 {
			r.linkTTL = ttl
		}
		if age := c.PreviewMaxAge.AsDuration(); age > 0 {
			r.previewMaxAge = age
		}
	}
	return r
}

// StatusTargetsFromConfig fills unset paths with the defaults.
func StatusTargetsFromConfig(c *conf.Redirect) StatusTargets {
	t := StatusTargets{
		NotFound:     DefaultNotFoundPath,
		Disabled:     DefaultDisabledPath,
		Expired:      DefaultExpiredPath,
		LimitReached: DefaultLimitReachedPath,
	}
	if c == nil {
		return t
	}
	if c.NotFoundPath != "" {
		t.NotFound = c.NotFoundPath
	}
	if c.DisabledPath != "" {
		t.Disabled = c.DisabledPath
	}
	if c.ExpiredPath != "" {
		t.Expired = c.ExpiredPath
	}
	if c.LimitReachedPath != "" {
		t.LimitReached = c.LimitReachedPath
	}
	return t
}

// Resolve never fails: store errors become NOT_FOUND, and anything
// unexpected, including a panic, becomes a pass-through.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (res *Resolution) {
	if req.Slug == "" || strings.Contains(req.Slug, "/") {
		return passThrough()
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.WithContext(ctx).Errorf("resolve %q panicked: %v", req.Slug, p)
			res = passThrough()
		}
	}()

	view := r.lookup(ctx, req.Slug)
	if view == nil || view.DestinationURL == "" {
		return r.status(OutcomeNotFound)
	}

	switch view.Eligibility(r.now()) {
	case domain.Disabled:
		return r.status(OutcomeDisabled)
	case domain.Expired:
		return r.status(OutcomeExpired)
	case domain.LimitReached:
		return r.status(OutcomeLimitReached)
	}

	if bot, ok := r.bots.Match(req.UserAgent); ok {
		body, err := r.preview.Render(view, req.Origin, req.Slug)
		if err != nil {
			r.log.WithContext(ctx).Errorf("render preview for %q: %v", req.Slug, err)
			return passThrough()
		}
		return &Resolution{
			Outcome:      OutcomePreview,
			Body:         body,
			CacheControl: fmt.Sprintf("public, max-age=%d", int(r.previewMaxAge.Seconds())),
			Bot:          bot,
		}
	}

	return &Resolution{
		Outcome:  OutcomeRedirect,
		Location: view.DestinationURL,
		Click: &domain.ClickRequest{
			LinkID:      view.ID,
			Slug:        req.Slug,
			UserAgent:   req.UserAgent,
			Referer:     req.Referer,
			IPAddress:   req.IPAddress,
			Geo:         req.Geo,
			RequestedAt: r.now(),
		},
	}
}

// lookup reads through the cache and populates it on a miss.
func (r *Resolver) lookup(ctx context.Context, slug string) *domain.CachedLinkView {
	view, err := r.cache.Get(ctx, slug)
	if err != nil {
		r.log.WithContext(ctx).Warnf("cache get %q: %v", slug, err)
	}
	if view != nil {
		return view
	}

	link, err := r.links.FindBySlug(ctx, slug)
	if err != nil {
		r.log.WithContext(ctx).Errorf("find link %q: %v", slug, err)
		return nil
	}
	if link == nil {
		return nil
	}

	view = link.View()
	if err := r.cache.Set(ctx, slug, view, r.linkTTL); err != nil {
		r.log.WithContext(ctx).Warnf("cache set %q: %v", slug, err)
	}
	return view
}

func (r *Resolver) status(outcome Outcome) *Resolution {
	var location string
	switch outcome {
	case OutcomeDisabled:
		location = r.targets.Disabled
	case OutcomeExpired:
		location = r.targets.Expired
	case OutcomeLimitReached:
		location = r.targets.LimitReached
	default:
		location = r.targets.NotFound
	}
	return &Resolution{Outcome: outcome, Location: location}
}

func passThrough() *Resolution {
	return &Resolution{Outcome: OutcomePassThrough}
}
