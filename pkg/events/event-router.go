package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/chatty/pkg/helpers"
)

// EventHandler receives decoded events from the router.
type EventHandler func(ctx context.Context, e Event) error

// EventRouter connects the session's PublisherSink to presentation handlers over
// an in-process watermill pub/sub.
type EventRouter struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
	verbose    bool
}

type EventRouterOption func(*EventRouter)

func WithLogger(logger watermill.LoggerAdapter) EventRouterOption {
	return func(r *EventRouter) {
		r.logger = logger
	}
}

func WithVerbose(verbose bool) EventRouterOption {
	return func(r *EventRouter) {
		r.verbose = verbose
		r.logger = helpers.NewWatermill(log.Logger)
	}
}

func NewEventRouter(options ...EventRouterOption) (*EventRouter, error) {
	ret := &EventRouter{
		logger: watermill.NopLogger{},
	}

	for _, o := range options {
		o(ret)
	}

	// Blocking until ack keeps events in publication order for each subscriber.
	goPubSub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}

	ret.router = router

	return ret, nil
}

// Sink returns a Sink publishing on topic through the router's publisher.
func (e *EventRouter) Sink(topic string) *PublisherSink {
	return NewPublisherSink(e.Publisher, topic)
}

func (e *EventRouter) Close() error {
	log.Debug().Msg("Closing publisher")
	err := e.Publisher.Close()
	if err != nil {
		log.Error().Err(err).Msg("Failed to close pubsub")
		// not returning just yet
	}

	log.Debug().Msg("Closing router")
	err = e.router.Close()
	if err != nil {
		log.Error().Err(err).Msg("Failed to close router")
	}
	log.Debug().Msg("Router closed")

	return nil
}

func (e *EventRouter) AddHandler(name string, topic string, f func(msg *message.Message) error) {
	e.router.AddNoPublisherHandler(name, topic, e.Subscriber, f)
}

// AddEventHandler registers a handler receiving decoded events. The message is
// acked before the handler runs so that a blocked handler never stalls the
// publishing session.
func (e *EventRouter) AddEventHandler(name string, topic string, handler EventHandler) {
	e.AddHandler(name, topic, func(msg *message.Message) error {
		msg.Ack()

		ev, err := NewEventFromJSON(msg.Payload)
		if err != nil {
			log.Error().Err(err).
				Str("message_id", msg.UUID).
				Str("payload", string(msg.Payload)).
				Msg("Failed to parse event from message payload")
			// one bad message should not kill the handler
			return nil
		}

		return handler(msg.Context(), ev)
	})
}

// DumpRawEvents returns a handler printing every event as indented JSON to w.
func (e *EventRouter) DumpRawEvents(w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		var s map[string]interface{}
		err := json.Unmarshal(msg.Payload, &s)
		if err != nil {
			return err
		}
		if e.verbose {
			s["sequence_number"] = msg.Metadata.Get("sequence_number")
		}
		s_, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(s_))
		return err
	}
}

func (e *EventRouter) Running() chan struct{} {
	return e.router.Running()
}

func (e *EventRouter) IsRunning() bool {
	return e.router.IsRunning()
}

func (e *EventRouter) Run(ctx context.Context) error {
	return e.router.Run(ctx)
}
