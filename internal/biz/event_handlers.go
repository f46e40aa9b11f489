package biz

import (
	"context"
	"errors"
	"time"

	"linkgate/internal/conf"
	"linkgate/internal/domain"
	"linkgate/internal/domain/event"
	"linkgate/internal/infra/eventbus"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultIngestionTimeout = 5 * time.Second
	defaultIngestionRetries = 3
)

// Compile-time interface checks
var (
	_ eventbus.EventHandler = (*LoggingEventHandler)(nil)
	_ eventbus.EventHandler = (*ClickEventHandler)(nil)
)

// LoggingEventHandler logs link lifecycle events.
type LoggingEventHandler struct {
	log       *log.Helper
	eventName string
}

// NewLoggingEventHandler creates a new logging event handler.
func NewLoggingEventHandler(logger log.Logger, eventName string) *LoggingEventHandler {
	return &LoggingEventHandler{
		log:       log.NewHelper(logger),
		eventName: eventName,
	}
}

func (h *LoggingEventHandler) HandlerName() string {
	return "logging_handler_" + h.eventName
}

func (h *LoggingEventHandler) EventName() string {
	return h.eventName
}

// Handle logs the event details.
func (h *LoggingEventHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	switch envelope.EventName {
	case event.LinkCreatedName:
		var evt event.LinkCreated
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.log.WithContext(ctx).Infof("[Event] link created: %s -> %s", evt.Slug, evt.DestinationURL)
	case event.LinkUpdatedName:
		var evt event.LinkUpdated
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.log.WithContext(ctx).Infof("[Event] link updated: %s -> %s (active: %t)", evt.Slug, evt.DestinationURL, evt.IsActive)
	case event.LinkDeletedName:
		var evt event.LinkDeleted
		if err := envelope.Decode(&evt); err != nil {
			return err
		}
		h.log.WithContext(ctx).Infof("[Event] link deleted: %s", evt.Slug)
	default:
		h.log.WithContext(ctx).Infof("[Event] %s: %s", envelope.EventName, envelope.LinkID)
	}
	return nil
}

// ClickEventHandler ingests LinkClicked events. It retries with exponential
// backoff and bumps the realtime counter once the click is stored.
type ClickEventHandler struct {
	ingestion  *ClickIngestion
	counter    domain.ClickCounter
	timeout    time.Duration
	maxRetries uint64
	newBackOff func() backoff.BackOff
	log        *log.Helper
}

// NewClickEventHandler creates a new click event handler.
func NewClickEventHandler(c *conf.Ingestion, ingestion *ClickIngestion, counter domain.ClickCounter, logger log.Logger) *ClickEventHandler {
	h := &ClickEventHandler{
		ingestion:  ingestion,
		counter:    counter,
		timeout:    defaultIngestionTimeout,
		maxRetries: defaultIngestionRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		log:        log.NewHelper(log.With(logger, "module", "biz/click-handler")),
	}
	if c != nil {
		if t := c.Timeout.AsDuration(); t > 0 {
			h.timeout = t
		}
		if c.MaxRetries > 0 {
			h.maxRetries = uint64(c.MaxRetries)
		}
	}
	return h
}

func (h *ClickEventHandler) HandlerName() string {
	return "click_handler"
}

func (h *ClickEventHandler) EventName() string {
	return event.LinkClickedName
}

// Handle stores the click. The click ID is the event ID, so a redelivered
// event or a retry after an unacknowledged commit is not counted twice.
func (h *ClickEventHandler) Handle(ctx context.Context, envelope *eventbus.EventEnvelope) error {
	var evt event.LinkClicked
	if err := envelope.Decode(&evt); err != nil {
		h.log.WithContext(ctx).Warnf("failed to unmarshal LinkClicked event: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	click := h.ingestion.BuildClickEvent(eventbus.ClickRequestFromEvent(evt))
	click.ID = evt.EventID()

	policy := backoff.WithContext(backoff.WithMaxRetries(h.newBackOff(), h.maxRetries), ctx)
	err := backoff.Retry(func() error {
		err := h.ingestion.Persist(ctx, click)
		if errors.Is(err, domain.ErrLinkNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err != nil {
		h.log.WithContext(ctx).Errorf("record click for link %s: %v", click.LinkID, err)
		return err
	}

	if _, err := h.counter.Incr(ctx, click.LinkID); err != nil {
		h.log.WithContext(ctx).Warnf("increment realtime counter of %s: %v", click.LinkID, err)
	}
	return nil
}

// RegisterEventHandlers registers all event handlers with the router.
func RegisterEventHandlers(router *eventbus.Router, clicks *ClickEventHandler, logger log.Logger) {
	for _, name := range []string{event.LinkCreatedName, event.LinkUpdatedName, event.LinkDeletedName} {
		router.AddHandler(NewLoggingEventHandler(logger, name))
	}
	router.AddHandler(clicks)
}
