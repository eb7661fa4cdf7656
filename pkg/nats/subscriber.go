package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"billing-engine-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// ErrorFunc receives per-message failures; the message is nak'd after it runs.
type ErrorFunc func(subject string, err error)

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	onError ErrorFunc
	consume []jetstream.ConsumeContext
}

func NewSubscriber(url string, onError ErrorFunc) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Subscriber{nc: nc, js: js, onError: onError}, nil
}

// Subscribe registers a handler for a subject pattern with a durable consumer,
// so messages published while the worker is down are still delivered.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var envelope events.Envelope
		if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
			// Malformed payloads will never parse; drop them.
			s.onError(msg.Subject(), fmt.Errorf("unmarshal event: %w", err))
			_ = msg.Term()
			return
		}

		if err := handler(ctx, envelope.Event()); err != nil {
			s.onError(msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.consume = append(s.consume, cc)
	return nil
}

// Close stops every consumer and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.consume {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
