package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"linkgate/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	// LinkLifecycleTopic carries link.created, link.updated and link.deleted.
	LinkLifecycleTopic = "links.lifecycle"
	// LinkClicksTopic carries link.clicked.
	LinkClicksTopic = "links.clicks"

	outputChannelBuffer = 256
)

// TopicFor returns the topic an event name is published on.
func TopicFor(eventName string) string {
	if eventName == event.LinkClickedName {
		return LinkClicksTopic
	}
	return LinkLifecycleTopic
}

// EventBus is an in-process Watermill pub/sub for link events.
type EventBus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewEventBus creates a new event bus using Go channels. Messages published
// before a subscriber exists are dropped.
func NewEventBus(logger watermill.LoggerAdapter) *EventBus {
	return &EventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: outputChannelBuffer}, logger),
		logger: logger,
	}
}

// Publisher returns the Watermill publisher.
func (b *EventBus) Publisher() message.Publisher {
	return b.pubsub
}

// Subscriber returns the Watermill subscriber.
func (b *EventBus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Publish sends e on the topic of its name. The message context is detached
// from ctx so handlers outlive the request that raised the event.
func (b *EventBus) Publish(ctx context.Context, e event.Event) error {
	msg, err := EventToMessage(e)
	if err != nil {
		return err
	}
	msg.SetContext(context.WithoutCancel(ctx))
	if err := b.pubsub.Publish(TopicFor(e.EventName()), msg); err != nil {
		return fmt.Errorf("publish %s %s: %w", e.EventName(), e.EventID(), err)
	}
	return nil
}

// PublishAll publishes every event and joins the failures.
func (b *EventBus) PublishAll(ctx context.Context, events []event.Event) error {
	var errs []error
	for _, e := range events {
		if err := b.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes the event bus.
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// EventEnvelope is the wire form of a link event.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	LinkID     string          `json:"link_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into the concrete event.
func (e *EventEnvelope) Decode(v event.Event) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventName, err)
	}
	return nil
}

// EventToMessage wraps e in an envelope. The message UUID is the event ID.
func EventToMessage(e event.Event) (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(EventEnvelope{
		EventID:    e.EventID(),
		EventName:  e.EventName(),
		LinkID:     e.AggregateID(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(e.EventID(), data)
	msg.Metadata.Set("event_name", e.EventName())
	msg.Metadata.Set("link_id", e.AggregateID())
	return msg, nil
}

// MessageToEnvelope extracts the event envelope from a Watermill message.
func MessageToEnvelope(msg *message.Message) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}
