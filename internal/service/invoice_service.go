// FILE: internal/service/invoice_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/contract"
	"billing-engine-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// BillingDashboard summarizes a user's billing state.
type BillingDashboard struct {
	OutstandingBalance money.Cents
	Currency           string
	OpenInvoices       int64
	OverdueInvoices    int64
	NextDue            *entity.Invoice
	Subscription       *entity.Subscription
}

type IssueInvoiceInput struct {
	UserId         uuid.UUID
	SubscriptionId *uuid.UUID
	AmountInCents  money.Cents
	Currency       string
	Description    string
	DueDate        time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
}

type IInvoiceService interface {
	Issue(ctx context.Context, input IssueInvoiceInput) (*entity.Invoice, error)
	List(ctx context.Context, userId uuid.UUID, status *entity.InvoiceStatus, page, perPage int) ([]*entity.Invoice, int64, error)
	Detail(ctx context.Context, invoiceId, userId uuid.UUID) (*entity.Invoice, error)
	Dashboard(ctx context.Context, userId uuid.UUID) (*BillingDashboard, error)

	OutstandingBalance(ctx context.Context, userId uuid.UUID) (money.Cents, error)
	NextDue(ctx context.Context, userId uuid.UUID) (*entity.Invoice, error)
	Overdue(ctx context.Context) ([]*entity.Invoice, error)
	DueSoon(ctx context.Context, days int) ([]*entity.Invoice, error)
	UpcomingForAutoPay(ctx context.Context, days int) ([]*entity.Invoice, error)
}

type invoiceService struct {
	uowFactory      unitofwork.RepositoryFactory
	clock           clock.Clock
	defaultCurrency string
}

func NewInvoiceService(uowFactory unitofwork.RepositoryFactory, c clock.Clock, defaultCurrency string) IInvoiceService {
	return &invoiceService{
		uowFactory:      uowFactory,
		clock:           c,
		defaultCurrency: defaultCurrency,
	}
}

// NormalizePage clamps raw 1-based page input. Zero or negative values fall
// back to the first page and the default page size.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func pageWindow(page, perPage int) (limit, offset int) {
	page, perPage = NormalizePage(page, perPage)
	return perPage, (page - 1) * perPage
}

func (s *invoiceService) invoices(ctx context.Context) contract.InvoiceRepository {
	return s.uowFactory.NewUnitOfWork(ctx).InvoiceRepository()
}

// Issue opens a new invoice with a generated number.
func (s *invoiceService) Issue(ctx context.Context, input IssueInvoiceInput) (*entity.Invoice, error) {
	if !input.AmountInCents.IsPositive() {
		return nil, apperror.BusinessRule(entity.FieldAmountInCents, entity.MsgAmountMustBePositive)
	}

	now := s.clock.Now()
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	id := uuid.New()
	invoice := &entity.Invoice{
		Id:             id,
		UserId:         input.UserId,
		SubscriptionId: input.SubscriptionId,
		InvoiceNumber:  fmt.Sprintf("INV-%s-%s", now.Format("200601"), id.String()[:8]),
		Status:         entity.InvoiceStatusOpen,
		AmountInCents:  input.AmountInCents,
		Currency:       currency,
		Description:    input.Description,
		DueDate:        clock.DateOf(input.DueDate),
		PeriodStart:    input.PeriodStart,
		PeriodEnd:      input.PeriodEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.invoices(ctx).Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, userId uuid.UUID, status *entity.InvoiceStatus, page, perPage int) ([]*entity.Invoice, int64, error) {
	if status != nil && !status.IsValid() {
		return nil, 0, apperror.BusinessRule("status", "The selected status is invalid.")
	}
	limit, offset := pageWindow(page, perPage)
	return s.invoices(ctx).ListForUser(ctx, userId, contract.InvoiceFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}

// Detail returns the invoice with its payments, newest first.
func (s *invoiceService) Detail(ctx context.Context, invoiceId, userId uuid.UUID) (*entity.Invoice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	invoice, err := uow.InvoiceRepository().FindByID(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NotFound("invoice")
	}
	if invoice.UserId != userId {
		return nil, apperror.Forbidden("invoice")
	}

	payments, err := uow.PaymentRepository().ForInvoice(ctx, invoice.Id)
	if err != nil {
		return nil, err
	}
	invoice.Payments = payments
	return invoice, nil
}

func (s *invoiceService) Dashboard(ctx context.Context, userId uuid.UUID) (*BillingDashboard, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	invoices := uow.InvoiceRepository()
	today := clock.Today(s.clock)

	outstanding, err := invoices.OutstandingBalanceForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	openCount, err := invoices.CountOpenForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	overdueCount, err := invoices.CountOverdueForUser(ctx, userId, today)
	if err != nil {
		return nil, err
	}
	nextDue, err := invoices.NextDueForUser(ctx, userId, today)
	if err != nil {
		return nil, err
	}
	sub, err := uow.SubscriptionRepository().FindActiveForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	currency := s.defaultCurrency
	if sub != nil && sub.Plan != nil {
		currency = sub.Plan.Currency
	}

	return &BillingDashboard{
		OutstandingBalance: outstanding,
		Currency:           currency,
		OpenInvoices:       openCount,
		OverdueInvoices:    overdueCount,
		NextDue:            nextDue,
		Subscription:       sub,
	}, nil
}

func (s *invoiceService) OutstandingBalance(ctx context.Context, userId uuid.UUID) (money.Cents, error) {
	return s.invoices(ctx).OutstandingBalanceForUser(ctx, userId)
}

func (s *invoiceService) NextDue(ctx context.Context, userId uuid.UUID) (*entity.Invoice, error) {
	return s.invoices(ctx).NextDueForUser(ctx, userId, clock.Today(s.clock))
}

func (s *invoiceService) Overdue(ctx context.Context) ([]*entity.Invoice, error) {
	return s.invoices(ctx).OverdueAsOf(ctx, clock.Today(s.clock))
}

// DueSoon matches invoices due exactly days from today, not a range.
func (s *invoiceService) DueSoon(ctx context.Context, days int) ([]*entity.Invoice, error) {
	return s.invoices(ctx).DueOn(ctx, clock.Today(s.clock).AddDate(0, 0, days))
}

// UpcomingForAutoPay matches invoices due in [today, today+days].
func (s *invoiceService) UpcomingForAutoPay(ctx context.Context, days int) ([]*entity.Invoice, error) {
	today := clock.Today(s.clock)
	return s.invoices(ctx).DueBetween(ctx, today, today.AddDate(0, 0, days))
}
