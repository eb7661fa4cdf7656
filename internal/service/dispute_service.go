// FILE: internal/service/dispute_service.go
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

const (
	msgInvalidDisputeReason  = "The selected reason is invalid."
	msgOnlySucceededDisputes = "Only succeeded payments can be disputed."
	msgActiveDisputeExists   = "Payment already has an active dispute."
	msgDisputeNotWithdrawn   = "Dispute cannot be withdrawn in its current status."
)

type IDisputeService interface {
	Open(ctx context.Context, paymentId, userId uuid.UUID, reason entity.DisputeReason, description string) (*entity.Dispute, error)
	Withdraw(ctx context.Context, disputeId, userId uuid.UUID) (*entity.Dispute, error)
	List(ctx context.Context, userId uuid.UUID) ([]*entity.Dispute, error)
	Get(ctx context.Context, disputeId, userId uuid.UUID) (*entity.Dispute, error)
}

type disputeService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.Gateway
	clock      clock.Clock
	logger     logger.ILogger
}

func NewDisputeService(uowFactory unitofwork.RepositoryFactory, gw gateway.Gateway, c clock.Clock, log logger.ILogger) IDisputeService {
	return &disputeService{
		uowFactory: uowFactory,
		gateway:    gw,
		clock:      c,
		logger:     log,
	}
}

func (s *disputeService) Open(ctx context.Context, paymentId, userId uuid.UUID, reason entity.DisputeReason, description string) (*entity.Dispute, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	payment, err := uow.PaymentRepository().FindByID(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound("payment")
	}
	if payment.UserId != userId {
		return nil, apperror.Forbidden("payment")
	}
	if !reason.IsValid() {
		return nil, apperror.BusinessRule("reason", msgInvalidDisputeReason)
	}
	if !payment.IsSucceeded() {
		return nil, apperror.BusinessRule("payment", msgOnlySucceededDisputes)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The payment row is the lock; a first dispute has no row of its own yet.
	if _, err := uow.PaymentRepository().FindByIDForUpdate(ctx, paymentId); err != nil {
		return nil, fmt.Errorf("lock payment: %w", err)
	}

	active, err := uow.DisputeRepository().HasActiveForPayment(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperror.BusinessRule("payment", msgActiveDisputeExists)
	}

	gatewayId, err := s.gateway.OpenDispute(ctx, payment, reason)
	if err != nil {
		s.logger.Error("DISPUTE", "Gateway rejected dispute", map[string]interface{}{"payment_id": paymentId, "error": err.Error()})
		return nil, fmt.Errorf("open dispute: %w", err)
	}

	now := s.clock.Now()
	dispute := &entity.Dispute{
		Id:               uuid.New(),
		UserId:           userId,
		PaymentId:        payment.Id,
		Status:           entity.DisputeStatusOpen,
		Reason:           reason,
		Description:      description,
		GatewayDisputeId: gatewayId,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uow.DisputeRepository().Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("DISPUTE", "Dispute opened", map[string]interface{}{"dispute_id": dispute.Id, "payment_id": paymentId, "reason": string(reason)})
	dispute.Payment = payment
	return dispute, nil
}

func (s *disputeService) Withdraw(ctx context.Context, disputeId, userId uuid.UUID) (*entity.Dispute, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	dispute, err := s.findOwned(ctx, uow, disputeId, userId)
	if err != nil {
		return nil, err
	}
	if !dispute.Status.IsWithdrawable() {
		return nil, apperror.BusinessRule("dispute", msgDisputeNotWithdrawn)
	}

	dispute.Withdraw(s.clock.Now())
	if err := uow.DisputeRepository().Update(ctx, dispute); err != nil {
		return nil, fmt.Errorf("withdraw dispute: %w", err)
	}
	return dispute, nil
}

func (s *disputeService) List(ctx context.Context, userId uuid.UUID) ([]*entity.Dispute, error) {
	return s.uowFactory.NewUnitOfWork(ctx).DisputeRepository().ListForUser(ctx, userId)
}

func (s *disputeService) Get(ctx context.Context, disputeId, userId uuid.UUID) (*entity.Dispute, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	dispute, err := s.findOwned(ctx, uow, disputeId, userId)
	if err != nil {
		return nil, err
	}
	payment, err := uow.PaymentRepository().FindByID(ctx, dispute.PaymentId)
	if err != nil {
		return nil, err
	}
	dispute.Payment = payment
	return dispute, nil
}

func (s *disputeService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, disputeId, userId uuid.UUID) (*entity.Dispute, error) {
	dispute, err := uow.DisputeRepository().FindByID(ctx, disputeId)
	if err != nil {
		return nil, err
	}
	if dispute == nil {
		return nil, apperror.NotFound("dispute")
	}
	if dispute.UserId != userId {
		return nil, apperror.Forbidden("dispute")
	}
	return dispute, nil
}
