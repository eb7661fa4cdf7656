package notification

import (
	"context"

	"billing-engine-be/pkg/events"
	pkgNats "billing-engine-be/pkg/nats"
)

// NatsSink publishes to JetStream on <prefix>.<event type>.
type NatsSink struct {
	publisher *pkgNats.Publisher
}

func NewNatsSink(publisher *pkgNats.Publisher) *NatsSink {
	return &NatsSink{publisher: publisher}
}

func (s *NatsSink) Emit(ctx context.Context, event events.Event) error {
	return s.publisher.Publish(ctx, event)
}
