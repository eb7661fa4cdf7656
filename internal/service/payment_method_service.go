// FILE: internal/service/payment_method_service.go
package service

import (
	"context"
	"fmt"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const msgMethodHasPendingPayments = "Payment method has pending payments."

type IPaymentMethodService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error)
	Get(ctx context.Context, methodId, userId uuid.UUID) (*entity.PaymentMethod, error)
	Add(ctx context.Context, userId uuid.UUID, attrs entity.PaymentMethodAttributes) (*entity.PaymentMethod, error)
	SetDefault(ctx context.Context, methodId, userId uuid.UUID) (*entity.PaymentMethod, error)
	Remove(ctx context.Context, methodId, userId uuid.UUID) error
}

type paymentMethodService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.Gateway
	autoPay    AutoPaySyncer
	clock      clock.Clock
	logger     logger.ILogger
}

func NewPaymentMethodService(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	autoPay AutoPaySyncer,
	c clock.Clock,
	log logger.ILogger,
) IPaymentMethodService {
	return &paymentMethodService{
		uowFactory: uowFactory,
		gateway:    gw,
		autoPay:    autoPay,
		clock:      c,
		logger:     log,
	}
}

func (s *paymentMethodService) List(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error) {
	return s.uowFactory.NewUnitOfWork(ctx).PaymentMethodRepository().ForUser(ctx, userId)
}

func (s *paymentMethodService) Get(ctx context.Context, methodId, userId uuid.UUID) (*entity.PaymentMethod, error) {
	return s.findOwned(ctx, s.uowFactory.NewUnitOfWork(ctx), methodId, userId)
}

func (s *paymentMethodService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, methodId, userId uuid.UUID) (*entity.PaymentMethod, error) {
	method, err := uow.PaymentMethodRepository().FindByID(ctx, methodId)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, apperror.NotFound("payment_method")
	}
	if method.UserId != userId {
		return nil, apperror.Forbidden("payment_method")
	}
	return method, nil
}

func (s *paymentMethodService) Add(ctx context.Context, userId uuid.UUID, attrs entity.PaymentMethodAttributes) (*entity.PaymentMethod, error) {
	if !attrs.Type.IsValid() {
		return nil, apperror.BusinessRule("type", msgInvalidMethodType)
	}

	token, err := s.gateway.Tokenize(ctx, attrs)
	if err != nil {
		s.logger.Error("PAYMENT_METHOD", "Tokenization failed", map[string]interface{}{"user_id": userId, "error": err.Error()})
		return nil, fmt.Errorf("tokenize payment method: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := lockUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	existing, err := uow.PaymentMethodRepository().LockForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	method := &entity.PaymentMethod{
		Id:           uuid.New(),
		UserId:       userId,
		Type:         attrs.Type,
		IsDefault:    len(existing) == 0,
		Gateway:      s.gateway.Name(),
		GatewayToken: token,
		LastFour:     attrs.LastFour,
		Brand:        attrs.Brand,
		ExpiryMonth:  attrs.ExpiryMonth,
		ExpiryYear:   attrs.ExpiryYear,
		HolderName:   attrs.HolderName,
		PixKey:       attrs.PixKey,
		BankName:     attrs.BankName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.PaymentMethodRepository().Create(ctx, method); err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *paymentMethodService) SetDefault(ctx context.Context, methodId, userId uuid.UUID) (*entity.PaymentMethod, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwned(ctx, uow, methodId, userId); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := lockUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	methods, err := uow.PaymentMethodRepository().LockForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	var target *entity.PaymentMethod
	for _, m := range methods {
		if m.Id == methodId {
			target = m
		}
	}
	if target == nil {
		return nil, apperror.NotFound("payment_method")
	}

	if err := uow.PaymentMethodRepository().ClearDefaultExcept(ctx, userId, target.Id); err != nil {
		return nil, fmt.Errorf("clear default: %w", err)
	}
	target.IsDefault = true
	target.UpdatedAt = s.clock.Now()
	if err := uow.PaymentMethodRepository().Update(ctx, target); err != nil {
		return nil, fmt.Errorf("set default: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.syncAutoPay(ctx, userId)
	return target, nil
}

func (s *paymentMethodService) Remove(ctx context.Context, methodId, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwned(ctx, uow, methodId, userId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := lockUser(ctx, uow, userId); err != nil {
		return err
	}
	methods, err := uow.PaymentMethodRepository().LockForUser(ctx, userId)
	if err != nil {
		return err
	}

	pending, err := uow.PaymentRepository().HasPendingForPaymentMethod(ctx, methodId)
	if err != nil {
		return err
	}
	if pending {
		return apperror.BusinessRule("payment_method", msgMethodHasPendingPayments)
	}

	if err := uow.PaymentMethodRepository().Delete(ctx, methodId); err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}

	// methods is default first, then newest; promote the newest survivor.
	var wasDefault bool
	var promote *entity.PaymentMethod
	for _, m := range methods {
		if m.Id == methodId {
			wasDefault = m.IsDefault
			continue
		}
		if promote == nil || m.CreatedAt.After(promote.CreatedAt) {
			promote = m
		}
	}
	if wasDefault && promote != nil {
		promote.IsDefault = true
		promote.UpdatedAt = s.clock.Now()
		if err := uow.PaymentMethodRepository().Update(ctx, promote); err != nil {
			return fmt.Errorf("promote default: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.syncAutoPay(ctx, userId)
	return nil
}

// lockUser takes the owning user row so concurrent changes to one user's
// methods serialize, including the first Add when no method row exists.
func lockUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	if _, err := uow.UserRepository().FindByIDForUpdate(ctx, userId); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func (s *paymentMethodService) syncAutoPay(ctx context.Context, userId uuid.UUID) {
	if s.autoPay == nil {
		return
	}
	if _, err := s.autoPay.SyncAutoPay(ctx, userId); err != nil {
		s.logger.Error("PAYMENT_METHOD", "Auto-pay sync failed", map[string]interface{}{"user_id": userId, "error": err.Error()})
	}
}
