package entity

import (
	"testing"
	"time"

	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func openInvoice(amount, paid money.Cents) *Invoice {
	return &Invoice{
		Id:                uuid.New(),
		Status:            InvoiceStatusOpen,
		AmountInCents:     amount,
		AmountPaidInCents: paid,
		Currency:          "BRL",
		DueDate:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func requireRule(t *testing.T, err error, field, msg string) {
	t.Helper()
	rule, ok := apperror.AsBusinessRule(err)
	require.True(t, ok, "expected business rule error, got %v", err)
	assert.Equal(t, []string{msg}, rule.Messages[field])
}

func TestInvoice_ValidatePaymentAmount(t *testing.T) {
	invoice := openInvoice(10000, 4000)

	tests := []struct {
		name   string
		amount money.Cents
		msg    string
	}{
		{"zero", 0, MsgAmountMustBePositive},
		{"negative", -1, MsgAmountMustBePositive},
		{"above balance", 6001, MsgAmountExceedsBalance},
		{"exact balance", 6000, ""},
		{"partial", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := invoice.ValidatePaymentAmount(tt.amount)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			requireRule(t, err, FieldAmountInCents, tt.msg)
		})
	}
}

func TestInvoice_ApplyPayment(t *testing.T) {
	invoice := openInvoice(10000, 0)

	require.NoError(t, invoice.ApplyPayment(3000, now))
	assert.Equal(t, InvoiceStatusOpen, invoice.Status)
	assert.Equal(t, money.Cents(7000), invoice.AmountDue())
	assert.Nil(t, invoice.PaidAt)

	require.NoError(t, invoice.ApplyPayment(7000, now))
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, money.Cents(0), invoice.AmountDue())
	require.NotNil(t, invoice.PaidAt)
	assert.True(t, invoice.PaidAt.Equal(now))

	requireRule(t, invoice.ApplyPayment(1, now), FieldInvoice, MsgInvoiceNotPayable)
	assert.Equal(t, money.Cents(10000), invoice.AmountPaidInCents)
}

func TestInvoice_IsOverdue(t *testing.T) {
	invoice := openInvoice(1000, 0)
	dueDay := invoice.DueDate

	assert.False(t, invoice.IsOverdue(dueDay), "due today is not overdue")
	assert.True(t, invoice.IsOverdue(dueDay.AddDate(0, 0, 1)))

	invoice.Status = InvoiceStatusPaid
	assert.False(t, invoice.IsOverdue(dueDay.AddDate(0, 0, 30)))
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	assert.True(t, InvoiceStatusUncollectible.IsValid())
	assert.False(t, InvoiceStatus("pending").IsValid())
}

func TestPayment_ApplySettlement(t *testing.T) {
	expires := now.Add(time.Hour)
	outcome := &SettlementOutcome{
		Status:           PaymentStatusPending,
		GatewayPaymentId: "gw_1",
		PixQrCode:        "qr",
		PixExpiresAt:     &expires,
		BoletoUrl:        "https://boleto",
		Raw:              map[string]interface{}{"id": "gw_1"},
	}

	t.Run("keeps only the fields of its own method", func(t *testing.T) {
		p := &Payment{PaymentMethodType: PaymentMethodTypePix}
		p.ApplySettlement(outcome, now)

		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Equal(t, "gw_1", p.GatewayPaymentId)
		assert.Equal(t, "qr", p.PixQrCode)
		assert.Empty(t, p.BoletoUrl)
		assert.Nil(t, p.PaidAt)
	})

	t.Run("success without timestamp is stamped now", func(t *testing.T) {
		p := &Payment{PaymentMethodType: PaymentMethodTypeCreditCard}
		p.ApplySettlement(&SettlementOutcome{Status: PaymentStatusSucceeded}, now)

		require.NotNil(t, p.PaidAt)
		assert.True(t, p.PaidAt.Equal(now))
		assert.True(t, p.IsSucceeded())
		assert.Empty(t, p.PixQrCode)
	})

	t.Run("failed outcome", func(t *testing.T) {
		p := &Payment{PaymentMethodType: PaymentMethodTypeCreditCard}
		p.ApplySettlement(FailedOutcome("gateway timeout", now), now)

		assert.Equal(t, PaymentStatusFailed, p.Status)
		assert.Equal(t, "gateway timeout", p.FailureReason)
		require.NotNil(t, p.FailedAt)
		assert.Nil(t, p.PaidAt)
	})
}

func TestPaymentMethodTypeTraits(t *testing.T) {
	tests := []struct {
		typ       PaymentMethodType
		stored    bool
		automatic bool
	}{
		{PaymentMethodTypeCreditCard, true, true},
		{PaymentMethodTypeDebitCard, true, true},
		{PaymentMethodTypePix, false, false},
		{PaymentMethodTypeBoleto, false, false},
		{PaymentMethodTypeBankDebit, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.True(t, tt.typ.IsValid())
			assert.Equal(t, tt.stored, tt.typ.RequiresStoredMethod())
			assert.Equal(t, tt.automatic, tt.typ.SupportsAutomaticCharge())
		})
	}

	assert.False(t, PaymentMethodType("cash").IsValid())
	assert.False(t, PaymentMethodType("cash").SupportsAutomaticCharge())

	var missing *PaymentMethod
	assert.False(t, missing.SupportsAutomaticCharge())
	assert.Len(t, PaymentMethodTypes(), 5)
}

func TestNewSubscription(t *testing.T) {
	userId := uuid.New()

	t.Run("trial", func(t *testing.T) {
		plan := &Plan{Id: uuid.New(), BillingCycle: BillingCycleQuarterly, TrialDays: 7}
		sub := NewSubscription(userId, plan, now)

		assert.Equal(t, SubscriptionStatusTrialing, sub.Status)
		require.NotNil(t, sub.TrialEndsAt)
		assert.True(t, sub.TrialEndsAt.Equal(now.AddDate(0, 0, 7)))
		assert.True(t, sub.CurrentPeriodEnd.Equal(now.AddDate(0, 3, 0)))
		assert.True(t, sub.Status.HasAccess())
	})

	t.Run("no trial", func(t *testing.T) {
		plan := &Plan{Id: uuid.New(), BillingCycle: BillingCycleAnnual}
		sub := NewSubscription(userId, plan, now)

		assert.Equal(t, SubscriptionStatusActive, sub.Status)
		assert.Nil(t, sub.TrialEndsAt)
		assert.True(t, sub.CurrentPeriodEnd.Equal(now.AddDate(1, 0, 0)))
		assert.True(t, sub.AutoRenew)
		assert.False(t, sub.AutoPay)
	})
}

func TestSubscription_Cancel(t *testing.T) {
	sub := NewSubscription(uuid.New(), &Plan{Id: uuid.New(), BillingCycle: BillingCycleMonthly}, now)
	later := now.Add(48 * time.Hour)

	sub.Cancel(later)

	assert.Equal(t, SubscriptionStatusCanceled, sub.Status)
	assert.False(t, sub.Status.HasAccess())
	assert.False(t, sub.AutoRenew)
	assert.True(t, sub.CanceledAt.Equal(later))
	assert.True(t, sub.CancelAt.Equal(sub.CurrentPeriodEnd))
}

func TestBillingCycle(t *testing.T) {
	assert.Equal(t, 6, BillingCycleSemiannual.Months())
	assert.False(t, BillingCycle("weekly").IsValid())

	// AddDate normalizes Jan 31 + 1 month into March.
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), BillingCycleMonthly.PeriodEnd(jan31))
}

func TestDisputeStatus(t *testing.T) {
	assert.True(t, DisputeStatusOpen.IsWithdrawable())
	assert.False(t, DisputeStatusUnderReview.IsWithdrawable())

	for _, s := range ActiveDisputeStatuses {
		assert.True(t, s.IsActive())
		assert.False(t, s.IsTerminal())
	}
	for _, s := range []DisputeStatus{DisputeStatusWon, DisputeStatusLost, DisputeStatusWithdrawn} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.IsActive())
	}

	d := &Dispute{Status: DisputeStatusOpen}
	d.Withdraw(now)
	assert.Equal(t, DisputeStatusWithdrawn, d.Status)
	assert.True(t, d.WithdrawnAt.Equal(now))

	assert.True(t, DisputeReasonOther.IsValid())
	assert.False(t, DisputeReason("changed_mind").IsValid())
}
