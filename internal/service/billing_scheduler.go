// FILE: internal/service/billing_scheduler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/lock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/pkg/events"
)

const (
	SweepDueSoon     = "due-soon"
	SweepAutoPay     = "auto-pay"
	SweepDunning     = "dunning"
	SweepSyncAutoPay = "sync-auto-pay"
)

var ErrSweepLocked = errors.New("sweep is already running elsewhere")

type SweepReport struct {
	Sweep    string
	Scanned  int
	AutoPaid int
	Notified int
	Skipped  int
	Failed   int
}

type SchedulerConfig struct {
	DueSoonDays        int
	AutoPayAdvanceDays int
	LockTTL            time.Duration
}

type IBillingScheduler interface {
	SendDueSoonReminders(ctx context.Context, days int) (*SweepReport, error)
	ProcessUpcomingAutoPay(ctx context.Context, days int) (*SweepReport, error)
	ProcessDunning(ctx context.Context) (*SweepReport, error)
	SyncAllAutoPay(ctx context.Context) (*SweepReport, error)
	ProcessInvoiceAutoPay(ctx context.Context, invoice *entity.Invoice) (bool, error)
}

type billingScheduler struct {
	uowFactory unitofwork.RepositoryFactory
	invoices   IInvoiceService
	payments   IPaymentService
	autoPay    AutoPaySyncer
	sink       notification.Sink
	locker     lock.Locker
	clock      clock.Clock
	logger     logger.ILogger
	cfg        SchedulerConfig
}

func NewBillingScheduler(
	uowFactory unitofwork.RepositoryFactory,
	invoices IInvoiceService,
	payments IPaymentService,
	autoPay AutoPaySyncer,
	sink notification.Sink,
	locker lock.Locker,
	c clock.Clock,
	log logger.ILogger,
	cfg SchedulerConfig,
) IBillingScheduler {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if cfg.DueSoonDays <= 0 {
		cfg.DueSoonDays = 3
	}
	if cfg.AutoPayAdvanceDays <= 0 {
		cfg.AutoPayAdvanceDays = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	return &billingScheduler{
		uowFactory: uowFactory,
		invoices:   invoices,
		payments:   payments,
		autoPay:    autoPay,
		sink:       sink,
		locker:     locker,
		clock:      c,
		logger:     log,
		cfg:        cfg,
	}
}

func (s *billingScheduler) guard(ctx context.Context, sweep string, run func(report *SweepReport) error) (*SweepReport, error) {
	release, err := s.locker.Acquire(ctx, "sweep:"+sweep, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrSweepLocked
		}
		return nil, fmt.Errorf("acquire %s lock: %w", sweep, err)
	}
	defer release()

	report := &SweepReport{Sweep: sweep}
	err = run(report)
	s.logger.Info("DUNNING", "Sweep finished", map[string]interface{}{
		"sweep":     sweep,
		"scanned":   report.Scanned,
		"auto_paid": report.AutoPaid,
		"notified":  report.Notified,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	})
	return report, err
}

// recordItemError counts a per-item failure. Domain errors are expected and
// only skip the item.
func (s *billingScheduler) recordItemError(report *SweepReport, invoice *entity.Invoice, err error) {
	details := map[string]interface{}{
		"sweep":      report.Sweep,
		"invoice_id": invoice.Id,
		"error":      err.Error(),
	}
	if apperror.IsDomain(err) {
		report.Skipped++
		s.logger.Warn("DUNNING", "Invoice skipped", details)
		return
	}
	report.Failed++
	s.logger.Error("DUNNING", "Invoice failed", details)
}

func (s *billingScheduler) emit(ctx context.Context, report *SweepReport, event events.Event) {
	if err := s.sink.Emit(ctx, event); err != nil {
		report.Failed++
		s.logger.Error("DUNNING", "Failed to emit notice", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return
	}
	report.Notified++
}

func (s *billingScheduler) SendDueSoonReminders(ctx context.Context, days int) (*SweepReport, error) {
	if days <= 0 {
		days = s.cfg.DueSoonDays
	}
	return s.guard(ctx, SweepDueSoon, func(report *SweepReport) error {
		invoices, err := s.invoices.DueSoon(ctx, days)
		if err != nil {
			return err
		}
		report.Scanned = len(invoices)

		now := s.clock.Now()
		for _, invoice := range invoices {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.emit(ctx, report, notification.InvoiceDueSoon(invoice, days, now))
		}
		return nil
	})
}

func (s *billingScheduler) ProcessUpcomingAutoPay(ctx context.Context, days int) (*SweepReport, error) {
	if days <= 0 {
		days = s.cfg.AutoPayAdvanceDays
	}
	return s.guard(ctx, SweepAutoPay, func(report *SweepReport) error {
		invoices, err := s.invoices.UpcomingForAutoPay(ctx, days)
		if err != nil {
			return err
		}
		report.Scanned = len(invoices)

		for _, invoice := range invoices {
			if err := ctx.Err(); err != nil {
				return err
			}
			paid, err := s.ProcessInvoiceAutoPay(ctx, invoice)
			if err != nil {
				s.recordItemError(report, invoice, err)
				continue
			}
			if paid {
				report.AutoPaid++
			}
		}
		return nil
	})
}

// ProcessDunning retries overdue invoices with auto-pay first and sends an
// overdue notice only for the ones it could not collect.
func (s *billingScheduler) ProcessDunning(ctx context.Context) (*SweepReport, error) {
	return s.guard(ctx, SweepDunning, func(report *SweepReport) error {
		invoices, err := s.invoices.Overdue(ctx)
		if err != nil {
			return err
		}
		report.Scanned = len(invoices)

		today := clock.Today(s.clock)
		for _, invoice := range invoices {
			if err := ctx.Err(); err != nil {
				return err
			}
			paid, err := s.ProcessInvoiceAutoPay(ctx, invoice)
			if err != nil {
				s.recordItemError(report, invoice, err)
			}
			if paid {
				report.AutoPaid++
				continue
			}
			s.emit(ctx, report, notification.InvoiceOverdue(invoice, today, s.clock.Now()))
		}
		return nil
	})
}

func (s *billingScheduler) SyncAllAutoPay(ctx context.Context) (*SweepReport, error) {
	return s.guard(ctx, SweepSyncAutoPay, func(report *SweepReport) error {
		subs, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindWithAutoPay(ctx)
		if err != nil {
			return err
		}
		report.Scanned = len(subs)

		for _, sub := range subs {
			if err := ctx.Err(); err != nil {
				return err
			}
			disabled, err := s.autoPay.SyncAutoPay(ctx, sub.UserId)
			if err != nil {
				report.Failed++
				s.logger.Error("DUNNING", "Auto-pay sync failed", map[string]interface{}{"user_id": sub.UserId, "error": err.Error()})
				continue
			}
			if disabled {
				report.Notified++
			} else {
				report.Skipped++
			}
		}
		return nil
	})
}

// ProcessInvoiceAutoPay charges the user's default method when auto-pay
// applies and reports whether the invoice got a succeeded payment.
func (s *billingScheduler) ProcessInvoiceAutoPay(ctx context.Context, invoice *entity.Invoice) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindActiveForUser(ctx, invoice.UserId)
	if err != nil {
		return false, err
	}
	if sub == nil || !sub.AutoPay {
		return false, nil
	}

	method, err := uow.PaymentMethodRepository().FindDefaultForUser(ctx, invoice.UserId)
	if err != nil {
		return false, err
	}
	if !method.SupportsAutomaticCharge() {
		return false, nil
	}

	pending, err := uow.PaymentRepository().HasPendingForInvoice(ctx, invoice.Id)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}

	payment, err := s.payments.InitiatePayment(ctx, invoice.Id, invoice.UserId, InitiatePaymentInput{
		MethodType:      method.Type,
		PaymentMethodId: &method.Id,
	})
	if err != nil {
		return false, err
	}
	return payment.IsSucceeded(), nil
}
