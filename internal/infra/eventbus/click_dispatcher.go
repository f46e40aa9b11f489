package eventbus

import (
	"context"
	"fmt"

	"linkgate/internal/domain"
	"linkgate/internal/domain/event"

	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.ClickDispatcher = (*ClickDispatcher)(nil)

const dispatchErrorBuffer = 64

// ClickDispatcher publishes clicks on the bus from detached goroutines.
// Publish failures go to an error channel that only feeds the log.
type ClickDispatcher struct {
	bus  *EventBus
	errs chan error
	done chan struct{}
	log  *log.Helper
}

// NewClickDispatcher starts the error sink. The cleanup stops it.
func NewClickDispatcher(bus *EventBus, logger log.Logger) (*ClickDispatcher, func()) {
	d := &ClickDispatcher{
		bus:  bus,
		errs: make(chan error, dispatchErrorBuffer),
		done: make(chan struct{}),
		log:  log.NewHelper(log.With(logger, "module", "click-dispatcher")),
	}
	go d.drain()
	return d, func() { close(d.done) }
}

// Dispatch returns immediately; the click is published asynchronously.
func (d *ClickDispatcher) Dispatch(req domain.ClickRequest) {
	go func() {
		if err := d.bus.Publish(context.Background(), NewLinkClicked(req)); err != nil {
			d.report(fmt.Errorf("dispatch click for link %s: %w", req.LinkID, err))
		}
	}()
}

func (d *ClickDispatcher) report(err error) {
	select {
	case d.errs <- err:
	case <-d.done:
		d.log.Error(err)
	default:
		d.log.Errorf("click dispatch error sink is full: %v", err)
	}
}

func (d *ClickDispatcher) drain() {
	for {
		select {
		case err := <-d.errs:
			d.log.Error(err)
		case <-d.done:
			return
		}
	}
}

// NewLinkClicked converts a captured request into the bus event.
func NewLinkClicked(req domain.ClickRequest) event.LinkClicked {
	return event.LinkClicked{
		Base:        event.NewBaseAt(req.LinkID, req.RequestedAt),
		Slug:        req.Slug,
		UserAgent:   req.UserAgent,
		Referer:     req.Referer,
		IPAddress:   req.IPAddress,
		Country:     req.Geo.Country,
		City:        req.Geo.City,
		Region:      req.Geo.Region,
		Latitude:    req.Geo.Latitude,
		Longitude:   req.Geo.Longitude,
		RequestedAt: req.RequestedAt,
	}
}

// ClickRequestFromEvent converts the bus event back into a request.
func ClickRequestFromEvent(e event.LinkClicked) domain.ClickRequest {
	return domain.ClickRequest{
		LinkID:    e.AggregateID(),
		Slug:      e.Slug,
		UserAgent: e.UserAgent,
		Referer:   e.Referer,
		IPAddress: e.IPAddress,
		Geo: domain.GeoHints{
			Country:   e.Country,
			City:      e.City,
			Region:    e.Region,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
		},
		RequestedAt: e.RequestedAt,
	}
}
