// FILE: internal/service/payment_service.go
package service

import (
	"context"
	"fmt"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	fieldPaymentMethodId    = "payment_method_id"
	fieldPaymentMethodType  = "payment_method_type"
	msgInvalidPaymentMethod = "The selected payment method is invalid."
	msgInvalidMethodType    = "The selected payment method type is invalid."
)

type InitiatePaymentInput struct {
	MethodType      entity.PaymentMethodType
	AmountInCents   *money.Cents
	PaymentMethodId *uuid.UUID
}

type IPaymentService interface {
	InitiatePayment(ctx context.Context, invoiceId, userId uuid.UUID, input InitiatePaymentInput) (*entity.Payment, error)
	ListPayments(ctx context.Context, userId uuid.UUID, page, perPage int) ([]*entity.Payment, int64, error)
	GetPayment(ctx context.Context, paymentId, userId uuid.UUID) (*entity.Payment, error)
}

type paymentService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.Gateway
	sink       notification.Sink
	clock      clock.Clock
	logger     logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	sink notification.Sink,
	c clock.Clock,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory: uowFactory,
		gateway:    gw,
		sink:       sink,
		clock:      c,
		logger:     log,
	}
}

// checkPayable runs the invoice preconditions in order and resolves the
// amount to charge.
func checkPayable(invoice *entity.Invoice, userId uuid.UUID, requested *money.Cents) (money.Cents, error) {
	if invoice == nil {
		return 0, apperror.NotFound("invoice")
	}
	if invoice.UserId != userId {
		return 0, apperror.Forbidden("invoice")
	}
	if !invoice.IsPayable() {
		return 0, apperror.BusinessRule(entity.FieldInvoice, entity.MsgInvoiceNotPayable)
	}

	amount := invoice.AmountDue()
	if requested != nil {
		amount = *requested
	}
	if err := invoice.ValidatePaymentAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func (s *paymentService) InitiatePayment(ctx context.Context, invoiceId, userId uuid.UUID, input InitiatePaymentInput) (*entity.Payment, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	invoice, err := uow.InvoiceRepository().FindByID(ctx, invoiceId)
	if err != nil {
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	if _, err := checkPayable(invoice, userId, input.AmountInCents); err != nil {
		return nil, err
	}
	if !input.MethodType.IsValid() {
		return nil, apperror.BusinessRule(fieldPaymentMethodType, msgInvalidMethodType)
	}

	var method *entity.PaymentMethod
	if input.PaymentMethodId != nil || input.MethodType.RequiresStoredMethod() {
		if input.PaymentMethodId == nil {
			return nil, apperror.BusinessRule(fieldPaymentMethodId, msgInvalidPaymentMethod)
		}
		method, err = uow.PaymentMethodRepository().FindByID(ctx, *input.PaymentMethodId)
		if err != nil {
			return nil, fmt.Errorf("find payment method: %w", err)
		}
		if method == nil || method.UserId != userId || method.Type != input.MethodType {
			return nil, apperror.BusinessRule(fieldPaymentMethodId, msgInvalidPaymentMethod)
		}
	}

	if err := uow.Begin(ctx); err != nil {
		s.logger.Error("PAYMENT", "Failed to begin transaction", map[string]interface{}{"invoice_id": invoiceId, "error": err.Error()})
		return nil, err
	}
	defer uow.Rollback()

	// Re-validate on the locked row so two concurrent attempts cannot overpay.
	invoice, err = uow.InvoiceRepository().FindByIDForUpdate(ctx, invoiceId)
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	amount, err := checkPayable(invoice, userId, input.AmountInCents)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	payment := &entity.Payment{
		Id:                uuid.New(),
		UserId:            userId,
		InvoiceId:         invoice.Id,
		AmountInCents:     amount,
		Currency:          invoice.Currency,
		Status:            entity.PaymentStatusPending,
		PaymentMethodType: input.MethodType,
		Gateway:           s.gateway.Name(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if method != nil {
		payment.PaymentMethodId = &method.Id
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	outcome, err := s.gateway.Charge(ctx, payment, method)
	if err != nil {
		s.logger.Warn("PAYMENT", "Gateway charge failed", map[string]interface{}{
			"payment_id": payment.Id,
			"invoice_id": invoice.Id,
			"error":      err.Error(),
		})
		outcome = entity.FailedOutcome(err.Error(), s.clock.Now())
	}

	now = s.clock.Now()
	payment.ApplySettlement(outcome, now)
	if err := uow.PaymentRepository().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	outbox := notification.NewOutbox()
	switch payment.Status {
	case entity.PaymentStatusSucceeded:
		if err := invoice.ApplyPayment(payment.AmountInCents, now); err != nil {
			return nil, err
		}
		if err := uow.InvoiceRepository().Update(ctx, invoice); err != nil {
			return nil, fmt.Errorf("update invoice: %w", err)
		}
		outbox.Add(notification.PaymentSucceeded(payment, invoice, now))
	case entity.PaymentStatusFailed:
		outbox.Add(notification.PaymentFailed(payment, invoice, now))
	}

	if err := uow.Commit(); err != nil {
		s.logger.Error("PAYMENT", "Failed to commit payment", map[string]interface{}{"payment_id": payment.Id, "error": err.Error()})
		return nil, err
	}

	s.logger.Info("PAYMENT", "Payment settled", map[string]interface{}{
		"payment_id": payment.Id,
		"invoice_id": invoice.Id,
		"status":     string(payment.Status),
		"amount":     int64(payment.AmountInCents),
	})

	outbox.Flush(ctx, s.sink, s.logger)
	payment.Invoice = invoice
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, userId uuid.UUID, page, perPage int) ([]*entity.Payment, int64, error) {
	limit, offset := pageWindow(page, perPage)
	return s.uowFactory.NewUnitOfWork(ctx).PaymentRepository().ListForUser(ctx, userId, limit, offset)
}

func (s *paymentService) GetPayment(ctx context.Context, paymentId, userId uuid.UUID) (*entity.Payment, error) {
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

	invoice, err := uow.InvoiceRepository().FindByID(ctx, payment.InvoiceId)
	if err != nil {
		return nil, err
	}
	payment.Invoice = invoice
	return payment, nil
}
