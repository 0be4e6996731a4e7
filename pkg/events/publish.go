package events

import (
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// TopicSession is the topic session and clipboard events are published on.
const TopicSession = "chatty.session"

// PublisherSink serializes events to JSON and hands them to a watermill publisher.
//
// It keeps a sequence number for each outgoing message, in the order they are
// handled by PublishEvent.
type PublisherSink struct {
	publisher      message.Publisher
	topic          string
	sequenceNumber uint64
	mutex          sync.Mutex
}

var _ Sink = (*PublisherSink)(nil)

func NewPublisherSink(publisher message.Publisher, topic string) *PublisherSink {
	return &PublisherSink{
		publisher: publisher,
		topic:     topic,
	}
}

// Publish returns the error of the underlying publisher.
func (s *PublisherSink) Publish(e Event) error {
	// lock for the sequence number
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := e.ToJSON()
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", s.sequenceNumber))
	msg.Metadata.Set("event_type", string(e.Type))
	s.sequenceNumber++

	return s.publisher.Publish(s.topic, msg)
}

func (s *PublisherSink) PublishEvent(e Event) {
	if err := s.Publish(e); err != nil {
		log.Warn().Err(err).Str("event_type", string(e.Type)).Msg("failed to publish")
	}
}
