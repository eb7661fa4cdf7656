package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"billing-engine-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelSink publishes on an in-process watermill GoChannel. It backs the
// notification worker when NATS is not configured.
type ChannelSink struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewChannelSink(pubSub *gochannel.GoChannel, topic string) *ChannelSink {
	return &ChannelSink{pubSub: pubSub, topic: topic}
}

func (s *ChannelSink) Emit(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.EventType())
	return s.pubSub.Publish(s.topic, msg)
}

// DecodeMessage turns a ChannelSink message back into an event.
func DecodeMessage(msg *message.Message) (events.Event, error) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return envelope.Event(), nil
}
