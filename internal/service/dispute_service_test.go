package service

import (
	"testing"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func succeededPayment(t *testing.T, h *harness, userId uuid.UUID) *entity.Payment {
	t.Helper()
	card := h.addMethod(userId, entity.PaymentMethodTypeCreditCard)
	inv := h.invoice(userId, 9990, 10)
	payment, err := h.payments.InitiatePayment(h.ctx, inv.Id, userId, InitiatePaymentInput{
		MethodType:      entity.PaymentMethodTypeCreditCard,
		PaymentMethodId: &card.Id,
	})
	require.NoError(t, err)
	require.True(t, payment.IsSucceeded())
	return payment
}

func TestDisputeService_OpenAndWithdraw(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	payment := succeededPayment(t, h, userId)

	dispute, err := h.disputes.Open(h.ctx, payment.Id, userId, entity.DisputeReasonDuplicate, "charged twice")
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusOpen, dispute.Status)
	assert.NotEmpty(t, dispute.GatewayDisputeId)

	_, err = h.disputes.Open(h.ctx, payment.Id, userId, entity.DisputeReasonFraudulent, "")
	assertBusinessRule(t, err, "payment", msgActiveDisputeExists)

	withdrawn, err := h.disputes.Withdraw(h.ctx, dispute.Id, userId)
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusWithdrawn, withdrawn.Status)
	require.NotNil(t, withdrawn.WithdrawnAt)
	assert.True(t, withdrawn.WithdrawnAt.Equal(testNow))

	// A withdrawn dispute no longer blocks a new one.
	_, err = h.disputes.Open(h.ctx, payment.Id, userId, entity.DisputeReasonFraudulent, "")
	assert.NoError(t, err)

	list, err := h.disputes.List(h.ctx, userId)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDisputeService_WithdrawUnderReview(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	payment := succeededPayment(t, h, userId)

	dispute, err := h.disputes.Open(h.ctx, payment.Id, userId, entity.DisputeReasonOther, "")
	require.NoError(t, err)

	dispute.Status = entity.DisputeStatusUnderReview
	require.NoError(t, h.uow().DisputeRepository().Update(h.ctx, dispute))

	_, err = h.disputes.Withdraw(h.ctx, dispute.Id, userId)
	assertBusinessRule(t, err, "dispute", msgDisputeNotWithdrawn)
}

func TestDisputeService_OpenPreconditions(t *testing.T) {
	h := newHarness(t)
	owner := h.user()
	payment := succeededPayment(t, h, owner)

	pendingInv := h.invoice(owner, 5000, 10)
	pending, err := h.payments.InitiatePayment(h.ctx, pendingInv.Id, owner, InitiatePaymentInput{MethodType: entity.PaymentMethodTypePix})
	require.NoError(t, err)

	_, err = h.disputes.Open(h.ctx, uuid.New(), owner, entity.DisputeReasonOther, "")
	assert.True(t, apperror.IsNotFound(err))

	_, err = h.disputes.Open(h.ctx, payment.Id, h.user(), entity.DisputeReasonOther, "")
	assert.True(t, apperror.IsForbidden(err))

	_, err = h.disputes.Open(h.ctx, payment.Id, owner, "chargeback", "")
	assertBusinessRule(t, err, "reason", msgInvalidDisputeReason)

	_, err = h.disputes.Open(h.ctx, pending.Id, owner, entity.DisputeReasonOther, "")
	assertBusinessRule(t, err, "payment", msgOnlySucceededDisputes)
}

func TestDisputeService_GetChecksOwnership(t *testing.T) {
	h := newHarness(t)
	owner := h.user()
	payment := succeededPayment(t, h, owner)
	dispute, err := h.disputes.Open(h.ctx, payment.Id, owner, entity.DisputeReasonOther, "")
	require.NoError(t, err)

	got, err := h.disputes.Get(h.ctx, dispute.Id, owner)
	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	assert.Equal(t, payment.Id, got.Payment.Id)

	_, err = h.disputes.Get(h.ctx, dispute.Id, h.user())
	assert.True(t, apperror.IsForbidden(err))

	_, err = h.disputes.Withdraw(h.ctx, uuid.New(), owner)
	assert.True(t, apperror.IsNotFound(err))
}
