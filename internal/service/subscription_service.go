// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"fmt"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	msgAlreadySubscribed      = "User already has an active subscription."
	msgNoActiveSubscription   = "No active subscription found."
	msgSamePlan               = "Already subscribed to this plan."
	msgAutoPayRequiresDefault = "Auto-pay requires an eligible default payment method."

	autoPayDisabledReason = "Default payment method no longer supports automatic charge."
)

// PlanCatalogCache holds the active plan list between reads.
type PlanCatalogCache interface {
	Get() ([]*entity.Plan, bool)
	Save(plans []*entity.Plan)
}

// AutoPaySyncer turns auto-pay off when the default method stops qualifying.
type AutoPaySyncer interface {
	SyncAutoPay(ctx context.Context, userId uuid.UUID) (bool, error)
}

type ISubscriptionService interface {
	AutoPaySyncer

	ListPlans(ctx context.Context) ([]*entity.Plan, error)
	Current(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	History(ctx context.Context, userId uuid.UUID) ([]*entity.Subscription, error)
	Subscribe(ctx context.Context, userId, planId uuid.UUID) (*entity.Subscription, error)
	ChangePlan(ctx context.Context, userId, planId uuid.UUID) (*entity.Subscription, error)
	Cancel(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	UpdateAutoPay(ctx context.Context, userId uuid.UUID, enable bool) (*entity.Subscription, error)
	UpdateAutoRenew(ctx context.Context, userId uuid.UUID, enable bool) (*entity.Subscription, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	plans      PlanCatalogCache
	sink       notification.Sink
	clock      clock.Clock
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	plans PlanCatalogCache,
	sink notification.Sink,
	c clock.Clock,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		plans:      plans,
		sink:       sink,
		clock:      c,
		logger:     log,
	}
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]*entity.Plan, error) {
	if s.plans != nil {
		if plans, ok := s.plans.Get(); ok {
			return plans, nil
		}
	}

	plans, err := s.uowFactory.NewUnitOfWork(ctx).PlanRepository().FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.plans != nil {
		s.plans.Save(plans)
	}
	return plans, nil
}

func (s *subscriptionService) Current(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	sub, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindActiveForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NotFound("subscription")
	}
	return sub, nil
}

// History lists every subscription the user ever held, newest first.
func (s *subscriptionService) History(ctx context.Context, userId uuid.UUID) ([]*entity.Subscription, error) {
	return s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().HistoryForUser(ctx, userId)
}

func (s *subscriptionService) findActivePlan(ctx context.Context, uow unitofwork.UnitOfWork, planId uuid.UUID) (*entity.Plan, error) {
	plan, err := uow.PlanRepository().FindByID(ctx, planId)
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil || !plan.IsActive {
		return nil, apperror.NotFound("plan")
	}
	return plan, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userId, planId uuid.UUID) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.findActivePlan(ctx, uow, planId)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		s.logger.Error("SUBSCRIPTION", "Failed to begin transaction", map[string]interface{}{"user_id": userId, "error": err.Error()})
		return nil, err
	}
	defer uow.Rollback()

	// With no subscription row yet there is nothing else to lock.
	if _, err := uow.UserRepository().FindByIDForUpdate(ctx, userId); err != nil {
		return nil, err
	}

	existing, err := uow.SubscriptionRepository().FindActiveForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.BusinessRule("subscription", msgAlreadySubscribed)
	}

	sub := entity.NewSubscription(userId, plan, s.clock.Now())
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("SUBSCRIPTION", "User subscribed", map[string]interface{}{
		"user_id": userId,
		"plan":    plan.Slug,
		"status":  string(sub.Status),
	})
	return sub, nil
}

// mutateActive locks the user's active subscription, applies fn and saves it.
func (s *subscriptionService) mutateActive(ctx context.Context, userId uuid.UUID, fn func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.logger.Error("SUBSCRIPTION", "Failed to begin transaction", map[string]interface{}{"user_id": userId, "error": err.Error()})
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindActiveForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.BusinessRule("subscription", msgNoActiveSubscription)
	}

	if err := fn(uow, sub); err != nil {
		return nil, err
	}
	sub.UpdatedAt = s.clock.Now()
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, userId, planId uuid.UUID) (*entity.Subscription, error) {
	return s.mutateActive(ctx, userId, func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
		if sub.PlanId == planId {
			return apperror.BusinessRule("plan_id", msgSamePlan)
		}
		plan, err := s.findActivePlan(ctx, uow, planId)
		if err != nil {
			return err
		}
		sub.PlanId = plan.Id
		sub.Plan = plan
		return nil
	})
}

func (s *subscriptionService) Cancel(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	sub, err := s.mutateActive(ctx, userId, func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
		sub.Cancel(s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SUBSCRIPTION", "Subscription canceled", map[string]interface{}{
		"user_id":   userId,
		"cancel_at": sub.CancelAt,
	})
	return sub, nil
}

func (s *subscriptionService) UpdateAutoPay(ctx context.Context, userId uuid.UUID, enable bool) (*entity.Subscription, error) {
	return s.mutateActive(ctx, userId, func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
		if enable {
			method, err := uow.PaymentMethodRepository().FindDefaultForUser(ctx, userId)
			if err != nil {
				return err
			}
			if !method.SupportsAutomaticCharge() {
				return apperror.BusinessRule("auto_pay", msgAutoPayRequiresDefault)
			}
		}
		sub.AutoPay = enable
		return nil
	})
}

func (s *subscriptionService) UpdateAutoRenew(ctx context.Context, userId uuid.UUID, enable bool) (*entity.Subscription, error) {
	return s.mutateActive(ctx, userId, func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
		sub.AutoRenew = enable
		return nil
	})
}

// SyncAutoPay reports whether auto-pay was switched off.
func (s *subscriptionService) SyncAutoPay(ctx context.Context, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindActiveForUser(ctx, userId)
	if err != nil {
		return false, err
	}
	if sub == nil || !sub.AutoPay {
		return false, nil
	}

	method, err := uow.PaymentMethodRepository().FindDefaultForUser(ctx, userId)
	if err != nil {
		return false, err
	}
	if method.SupportsAutomaticCharge() {
		return false, nil
	}

	now := s.clock.Now()
	sub.AutoPay = false
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return false, fmt.Errorf("update subscription: %w", err)
	}

	outbox := notification.NewOutbox()
	outbox.Add(notification.AutoPayDisabled(sub, autoPayDisabledReason, now))

	if err := uow.Commit(); err != nil {
		return false, err
	}

	s.logger.Info("SUBSCRIPTION", "Auto-pay disabled", map[string]interface{}{"user_id": userId, "subscription_id": sub.Id})
	outbox.Flush(ctx, s.sink, s.logger)
	return true, nil
}
