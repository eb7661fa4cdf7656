package service

import (
	"context"
	"fmt"

	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/pkg/mailer"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/pkg/events"
	pktNats "billing-engine-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const notificationDurable = "billing-notification-worker"

// NotificationService renders billing events and delivers them by email.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, m mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		mailer:     m,
		logger:     log,
	}
}

// StartNats consumes subject (e.g. "billing.>") with a durable consumer.
func (s *NotificationService) StartNats(ctx context.Context, sub *pktNats.Subscriber, subject string) error {
	if err := sub.Subscribe(ctx, subject, notificationDurable, s.Handle); err != nil {
		s.logger.Error("NOTIFICATION", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NOTIFICATION", "Notification worker listening", map[string]interface{}{"subject": subject})
	return nil
}

// StartChannel consumes the in-process bus. Failed deliveries are nacked and
// redelivered by the GoChannel.
func (s *NotificationService) StartChannel(ctx context.Context, pubSub *gochannel.GoChannel, topic string) error {
	messages, err := pubSub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := notification.DecodeMessage(msg)
			if err != nil {
				s.logger.Error("NOTIFICATION", "Dropping malformed message", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			if err := s.Handle(msg.Context(), event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	s.logger.Info("NOTIFICATION", "Notification worker listening", map[string]interface{}{"topic": topic})
	return nil
}

// Handle delivers one event. Events without a renderable message or without a
// known recipient are acknowledged and dropped.
func (s *NotificationService) Handle(ctx context.Context, event events.Event) error {
	msg, ok := notification.Render(event)
	if !ok {
		return nil
	}

	raw, _ := event.Payload()["user_id"].(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("NOTIFICATION", "Event without user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindByID(ctx, userId)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.Email == "" {
		s.logger.Warn("NOTIFICATION", "Recipient not found", map[string]interface{}{"type": event.EventType(), "user_id": userId})
		return nil
	}

	if err := s.mailer.Send(user.Email, msg.Subject, msg.Body); err != nil {
		return err
	}

	s.logger.Info("NOTIFICATION", "Notification delivered", map[string]interface{}{"type": event.EventType(), "user_id": userId})
	return nil
}
