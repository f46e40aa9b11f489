package biz

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"linkgate/internal/analytics/enrichment"
	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

var crawlerPattern = regexp.MustCompile(`(?i)bot|crawler|spider`)

// ClickIngestion turns captured requests into stored click events.
type ClickIngestion struct {
	links   domain.LinkRepository
	clicks  domain.ClickRepository
	uow     domain.UnitOfWork
	devices *enrichment.DeviceDetector
	geo     enrichment.GeoResolver
	now     func() time.Time
	log     *log.Helper
}

// NewClickIngestion creates a ClickIngestion.
func NewClickIngestion(
	links domain.LinkRepository,
	clicks domain.ClickRepository,
	uow domain.UnitOfWork,
	devices *enrichment.DeviceDetector,
	geo enrichment.GeoResolver,
	logger log.Logger,
) *ClickIngestion {
	return &ClickIngestion{
		links:   links,
		clicks:  clicks,
		uow:     uow,
		devices: devices,
		geo:     geo,
		now:     time.Now,
		log:     log.NewHelper(log.With(logger, "module", "biz/click")),
	}
}

// RecordClick enriches and persists one click.
func (c *ClickIngestion) RecordClick(ctx context.Context, req domain.ClickRequest) error {
	return c.Persist(ctx, c.BuildClickEvent(req))
}

// BuildClickEvent enriches a request with device, referrer and location data.
func (c *ClickIngestion) BuildClickEvent(req domain.ClickRequest) *domain.ClickEvent {
	ua := c.devices.Parse(req.UserAgent)
	ref := enrichment.ParseReferrer(req.Referer)

	geo := req.Geo
	if req.IPAddress != "" && (geo.Country == "" || geo.City == "" || geo.Latitude == nil) {
		geo = enrichment.MergeGeo(geo, c.geo.Resolve(req.IPAddress))
	}

	ts := req.RequestedAt
	if ts.IsZero() {
		ts = c.now()
	}

	return &domain.ClickEvent{
		ID:             uuid.NewString(),
		LinkID:         req.LinkID,
		Timestamp:      ts,
		Country:        optional(strings.ToUpper(geo.Country)),
		City:           optional(geo.City),
		Region:         optional(geo.Region),
		Latitude:       geo.Latitude,
		Longitude:      geo.Longitude,
		Device:         ua.Device,
		DeviceName:     ua.DeviceName,
		Browser:        ua.Browser,
		OS:             ua.OS,
		Referrer:       ref.URL,
		ReferrerDomain: ref.Domain,
		IsBot:          crawlerPattern.MatchString(req.UserAgent),
	}
}

// Persist appends the click and increments the link total in one
// transaction. Persisting an event twice is a no-op.
func (c *ClickIngestion) Persist(ctx context.Context, click *domain.ClickEvent) error {
	err := c.uow.Do(ctx, func(ctx context.Context) error {
		if err := c.clicks.Append(ctx, click); err != nil {
			return err
		}
		return c.links.IncrementTotalClicks(ctx, click.LinkID)
	})
	if errors.Is(err, domain.ErrDuplicateClick) {
		c.log.WithContext(ctx).Debugf("click %s already recorded", click.ID)
		return nil
	}
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
