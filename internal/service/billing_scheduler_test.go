package service

import (
	"context"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/pkg/lock"
	"billing-engine-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return nil, lock.ErrNotAcquired
}

func TestSendDueSoonReminders_ExactDayOnly(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	target := h.invoice(userId, 9990, 3)
	h.invoice(userId, 9990, 2)
	h.invoice(userId, 9990, 4)

	report, err := h.scheduler.SendDueSoonReminders(h.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Notified)

	require.Len(t, h.sink.events, 1)
	event := h.sink.events[0]
	assert.Equal(t, events.InvoiceDueSoon, event.EventType())
	assert.Equal(t, target.InvoiceNumber, event.Payload()["invoice_number"])

	// Re-running on the same day notifies again.
	report, err = h.scheduler.SendDueSoonReminders(h.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Notified)
	assert.Len(t, h.sink.events, 2)
}

func TestProcessUpcomingAutoPay(t *testing.T) {
	h := newHarness(t)

	withAutoPay := h.user()
	h.subscribeWithAutoPay(withAutoPay)
	dueToday := h.invoice(withAutoPay, 9990, 0)
	dueTomorrow := h.invoice(withAutoPay, 9990, 1)
	later := h.invoice(withAutoPay, 9990, 5)

	withoutAutoPay := h.user()
	h.addMethod(withoutAutoPay, entity.PaymentMethodTypeCreditCard)
	manual := h.invoice(withoutAutoPay, 9990, 0)

	report, err := h.scheduler.ProcessUpcomingAutoPay(h.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.AutoPaid)
	assert.Zero(t, report.Failed)

	assert.Equal(t, entity.InvoiceStatusPaid, h.reloadInvoice(dueToday.Id).Status)
	assert.Equal(t, entity.InvoiceStatusPaid, h.reloadInvoice(dueTomorrow.Id).Status)
	assert.Equal(t, entity.InvoiceStatusOpen, h.reloadInvoice(later.Id).Status)
	assert.Equal(t, entity.InvoiceStatusOpen, h.reloadInvoice(manual.Id).Status)

	// Paid invoices drop out of the selection.
	report, err = h.scheduler.ProcessUpcomingAutoPay(h.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.AutoPaid)
}

func TestProcessInvoiceAutoPay_SkipsInvoiceWithPendingPayment(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	h.subscribeWithAutoPay(userId)
	inv := h.invoice(userId, 9990, 0)

	_, err := h.payments.InitiatePayment(h.ctx, inv.Id, userId, InitiatePaymentInput{MethodType: entity.PaymentMethodTypeBoleto})
	require.NoError(t, err)

	paid, err := h.scheduler.ProcessInvoiceAutoPay(h.ctx, inv)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Equal(t, entity.InvoiceStatusOpen, h.reloadInvoice(inv.Id).Status)
}

func TestProcessInvoiceAutoPay_NotApplicable(t *testing.T) {
	h := newHarness(t)

	noSubscription := h.user()
	h.addMethod(noSubscription, entity.PaymentMethodTypeCreditCard)

	pixDefault := h.user()
	h.subscribeWithAutoPay(pixDefault)
	pix := h.addMethod(pixDefault, entity.PaymentMethodTypePix)
	// Bypass the service so auto-pay stays on with an ineligible default.
	pix.IsDefault = true
	uow := h.uow()
	require.NoError(t, uow.PaymentMethodRepository().ClearDefaultExcept(h.ctx, pixDefault, pix.Id))
	require.NoError(t, uow.PaymentMethodRepository().Update(h.ctx, pix))

	for name, inv := range map[string]*entity.Invoice{
		"no subscription":   h.invoice(noSubscription, 1000, 0),
		"ineligible method": h.invoice(pixDefault, 1000, 0),
	} {
		t.Run(name, func(t *testing.T) {
			paid, err := h.scheduler.ProcessInvoiceAutoPay(h.ctx, inv)
			require.NoError(t, err)
			assert.False(t, paid)
		})
	}
}

func TestProcessDunning_AutoPaidInvoicesGetNoNotice(t *testing.T) {
	h := newHarness(t)

	autoUser := h.user()
	h.subscribeWithAutoPay(autoUser)
	collectable := h.invoice(autoUser, 9990, -2)

	manualUser := h.user()
	uncollectable := h.invoice(manualUser, 4990, -1)
	h.invoice(manualUser, 4990, 2)
	h.sink.reset()

	report, err := h.scheduler.ProcessDunning(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.AutoPaid)
	assert.Equal(t, 1, report.Notified)

	assert.Equal(t, entity.InvoiceStatusPaid, h.reloadInvoice(collectable.Id).Status)

	var overdue []events.Event
	for _, e := range h.sink.events {
		if e.EventType() == events.InvoiceOverdue {
			overdue = append(overdue, e)
		}
	}
	require.Len(t, overdue, 1)
	assert.Equal(t, uncollectable.InvoiceNumber, overdue[0].Payload()["invoice_number"])
	assert.Equal(t, 1, overdue[0].Payload()["days_overdue"])
}

func TestProcessDunning_FailedChargeFallsBackToNotice(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		h.gateway = &failingGateway{StubGateway: gateway.NewStubGateway(h.clock), err: errGatewayDown}
	})
	userId := h.user()
	h.subscribeWithAutoPay(userId)
	inv := h.invoice(userId, 9990, -1)
	h.sink.reset()

	report, err := h.scheduler.ProcessDunning(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, report.AutoPaid)
	assert.Equal(t, 1, report.Notified)

	assert.Equal(t, []string{events.PaymentFailed, events.InvoiceOverdue}, h.sink.types())
	assert.Equal(t, entity.InvoiceStatusOpen, h.reloadInvoice(inv.Id).Status)
}

func TestSyncAllAutoPay(t *testing.T) {
	h := newHarness(t)

	eligible := h.user()
	h.subscribeWithAutoPay(eligible)

	stale := h.user()
	card := h.subscribeWithAutoPay(stale)
	// Remove the card behind the service's back so only the sweep notices.
	require.NoError(t, h.uow().PaymentMethodRepository().Delete(h.ctx, card.Id))
	h.sink.reset()

	report, err := h.scheduler.SyncAllAutoPay(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{events.SubscriptionAutoPayOff}, h.sink.types())

	sub, err := h.subscriptions.Current(h.ctx, stale)
	require.NoError(t, err)
	assert.False(t, sub.AutoPay)
}

func TestSweeps_RespectHeldLock(t *testing.T) {
	h := newHarnessWithLocker(t, heldLocker{})
	h.invoice(h.user(), 1000, 3)

	_, err := h.scheduler.SendDueSoonReminders(h.ctx, 3)
	assert.ErrorIs(t, err, ErrSweepLocked)

	_, err = h.scheduler.ProcessDunning(h.ctx)
	assert.ErrorIs(t, err, ErrSweepLocked)
	assert.Empty(t, h.sink.types())
}

func TestSweeps_StopOnCanceledContext(t *testing.T) {
	h := newHarness(t)
	h.invoice(h.user(), 1000, 3)

	ctx, cancel := context.WithCancel(h.ctx)
	cancel()

	report, err := h.scheduler.SendDueSoonReminders(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Notified)
}
