// Package notification carries billing events from the engine to whoever
// delivers them. Services collect events in an Outbox while a transaction is
// open and flush it to a Sink only after the commit succeeded.
package notification

import (
	"context"

	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/pkg/events"
)

// Sink is fire-and-forget from the engine's point of view: Emit errors are
// logged by the outbox, never returned to the caller of a billing operation.
type Sink interface {
	Emit(ctx context.Context, event events.Event) error
}

type Outbox struct {
	pending []events.Event
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(event events.Event) {
	o.pending = append(o.pending, event)
}

func (o *Outbox) Len() int {
	return len(o.pending)
}

// Discard drops everything collected so far; used when the transaction rolls back.
func (o *Outbox) Discard() {
	o.pending = nil
}

// Flush emits every pending event in order and empties the outbox.
func (o *Outbox) Flush(ctx context.Context, sink Sink, log logger.ILogger) {
	pending := o.pending
	o.pending = nil
	for _, event := range pending {
		if err := sink.Emit(ctx, event); err != nil {
			log.Error("NOTIFICATION", "Failed to emit event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
}

// LogSink only writes events to the log. Used when no bus is configured.
type LogSink struct {
	logger logger.ILogger
}

func NewLogSink(log logger.ILogger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Emit(ctx context.Context, event events.Event) error {
	s.logger.Info("NOTIFICATION", "Billing event", map[string]interface{}{
		"type":    event.EventType(),
		"payload": event.Payload(),
	})
	return nil
}

// FanoutSink emits to every sink and returns the first error.
type FanoutSink []Sink

func (f FanoutSink) Emit(ctx context.Context, event events.Event) error {
	var first error
	for _, sink := range f {
		if err := sink.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
