package eventbus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventHandler consumes one event name.
type EventHandler interface {
	// HandlerName must be unique within a router.
	HandlerName() string
	EventName() string
	Handle(ctx context.Context, envelope *EventEnvelope) error
}

// Router subscribes each handler to the topic of its event name.
type Router struct {
	router *message.Router
	bus    *EventBus
	logger watermill.LoggerAdapter
}

// NewRouter creates a new event router.
func NewRouter(bus *EventBus, logger watermill.LoggerAdapter) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}
	return &Router{router: router, bus: bus, logger: logger}, nil
}

// AddHandler registers handler. It must be called before Run.
func (r *Router) AddHandler(handler EventHandler) {
	r.router.AddNoPublisherHandler(
		handler.HandlerName(),
		TopicFor(handler.EventName()),
		r.bus.Subscriber(),
		r.dispatch(handler),
	)
}

// dispatch always acks. Handlers retry on their own and a nack would make
// gochannel redeliver the message forever.
func (r *Router) dispatch(handler EventHandler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		envelope, err := MessageToEnvelope(msg)
		if err != nil {
			r.logger.Error("dropping malformed message", err, watermill.LogFields{"message_uuid": msg.UUID})
			return nil
		}
		if envelope.EventName != handler.EventName() {
			return nil
		}

		if err := handler.Handle(msg.Context(), envelope); err != nil {
			r.logger.Error("event handler failed", err, watermill.LogFields{
				"handler":    handler.HandlerName(),
				"event_name": envelope.EventName,
				"event_id":   envelope.EventID,
				"link_id":    envelope.LinkID,
			})
		}
		return nil
	}
}

// Run blocks until ctx is done or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
