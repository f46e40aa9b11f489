package eventbus

import (
	"context"
	"testing"
	"time"

	"linkgate/internal/domain"
	"linkgate/internal/domain/event"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/suite"
)

type EventBusTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	sut    *EventBus
}

func TestEventBusTestSuite(t *testing.T) {
	suite.Run(t, new(EventBusTestSuite))
}

func (s *EventBusTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 2*time.Second)
	s.sut = NewEventBus(watermill.NopLogger{})
}

func (s *EventBusTestSuite) TearDownTest() {
	s.cancel()
	s.sut.Close()
}

func (s *EventBusTestSuite) subscribe(topic string) <-chan *message.Message {
	messages, err := s.sut.Subscriber().Subscribe(s.ctx, topic)
	s.Require().NoError(err)
	return messages
}

func (s *EventBusTestSuite) receive(messages <-chan *message.Message) *EventEnvelope {
	select {
	case msg := <-messages:
		msg.Ack()
		envelope, err := MessageToEnvelope(msg)
		s.Require().NoError(err)
		return envelope
	case <-s.ctx.Done():
		s.FailNow("timeout waiting for message")
		return nil
	}
}

func (s *EventBusTestSuite) TestTopicFor() {
	s.Equal(LinkClicksTopic, TopicFor(event.LinkClickedName))
	s.Equal(LinkLifecycleTopic, TopicFor(event.LinkCreatedName))
	s.Equal(LinkLifecycleTopic, TopicFor(event.LinkUpdatedName))
	s.Equal(LinkLifecycleTopic, TopicFor(event.LinkDeletedName))
}

func (s *EventBusTestSuite) TestEventToMessage() {
	evt := event.NewLinkCreated("link-1", "promo", "https://example.com", nil, nil)

	msg, err := EventToMessage(evt)

	s.Require().NoError(err)
	s.Equal(evt.EventID(), msg.UUID)
	s.Equal("link.created", msg.Metadata.Get("event_name"))
	s.Equal("link-1", msg.Metadata.Get("link_id"))
}

func (s *EventBusTestSuite) TestEnvelopeDecode() {
	evt := event.NewLinkUpdated("link-1", "promo", "https://example.org", false)
	msg, err := EventToMessage(evt)
	s.Require().NoError(err)

	envelope, err := MessageToEnvelope(msg)
	s.Require().NoError(err)
	var decoded event.LinkUpdated
	s.Require().NoError(envelope.Decode(&decoded))

	s.Equal(evt.EventID(), envelope.EventID)
	s.Equal("link-1", envelope.LinkID)
	s.True(evt.OccurredAt().Equal(envelope.OccurredAt))
	s.Equal(evt.Slug, decoded.Slug)
	s.Equal(evt.DestinationURL, decoded.DestinationURL)
	s.False(decoded.IsActive)
}

func (s *EventBusTestSuite) TestEnvelopeDecode_BadPayload() {
	envelope := &EventEnvelope{EventName: "link.created", Payload: []byte("{")}

	var decoded event.LinkCreated
	s.Error(envelope.Decode(&decoded))
}

func (s *EventBusTestSuite) TestPublishRoutesByName() {
	// Arrange
	lifecycle := s.subscribe(LinkLifecycleTopic)
	clicks := s.subscribe(LinkClicksTopic)

	// Act
	err := s.sut.PublishAll(s.ctx, []event.Event{
		event.NewLinkCreated("link-1", "promo", "https://example.com", nil, nil),
		NewLinkClicked(domain.ClickRequest{LinkID: "link-1", UserAgent: "Mozilla"}),
	})

	// Assert
	s.Require().NoError(err)
	s.Equal("link.created", s.receive(lifecycle).EventName)
	s.Equal("link.clicked", s.receive(clicks).EventName)
}

func (s *EventBusTestSuite) TestPublishWithoutSubscriber() {
	err := s.sut.Publish(s.ctx, event.NewLinkDeleted("link-1", "promo"))

	s.NoError(err)
}

func (s *EventBusTestSuite) TestPublishAfterClose() {
	s.Require().NoError(s.sut.Close())

	err := s.sut.PublishAll(s.ctx, []event.Event{
		event.NewLinkDeleted("link-1", "promo"),
		event.NewLinkDeleted("link-2", "docs"),
	})

	s.Error(err)
}
