package service

import (
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_TrialPlanStartsTrialing(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	plan := h.plan("trial", 4990, 14)

	sub, err := h.subscriptions.Subscribe(h.ctx, userId, plan.Id)
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusTrialing, sub.Status)
	require.NotNil(t, sub.TrialEndsAt)
	assert.True(t, sub.TrialEndsAt.Equal(testNow.AddDate(0, 0, 14)))
	assert.True(t, sub.CurrentPeriodEnd.Equal(testNow.AddDate(0, 1, 0)))
	assert.True(t, sub.AutoRenew)
	assert.False(t, sub.AutoPay)
}

func TestSubscribe_PlanWithoutTrialStartsActive(t *testing.T) {
	h := newHarness(t)
	plan := h.plan("basic", 1990, 0)

	sub, err := h.subscriptions.Subscribe(h.ctx, h.user(), plan.Id)
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Nil(t, sub.TrialEndsAt)
}

func TestSubscribe_SingleActiveSubscription(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	plan := h.plan("basic", 1990, 0)

	_, err := h.subscriptions.Subscribe(h.ctx, userId, plan.Id)
	require.NoError(t, err)

	_, err = h.subscriptions.Subscribe(h.ctx, userId, h.plan("pro", 4990, 0).Id)
	assertBusinessRule(t, err, "subscription", msgAlreadySubscribed)

	_, err = h.subscriptions.Cancel(h.ctx, userId)
	require.NoError(t, err)

	_, err = h.subscriptions.Subscribe(h.ctx, userId, plan.Id)
	assert.NoError(t, err)
}

func TestSubscribe_UnknownOrInactivePlan(t *testing.T) {
	h := newHarness(t)
	userId := h.user()

	_, err := h.subscriptions.Subscribe(h.ctx, userId, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	retired := h.plan("retired", 990, 0)
	retired.IsActive = false
	require.NoError(t, h.uow().PlanRepository().Create(h.ctx, retired))

	_, err = h.subscriptions.Subscribe(h.ctx, userId, retired.Id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestChangePlan(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	basic := h.plan("basic", 1990, 0)
	pro := h.plan("pro", 4990, 0)

	_, err := h.subscriptions.ChangePlan(h.ctx, userId, pro.Id)
	assertBusinessRule(t, err, "subscription", msgNoActiveSubscription)

	original, err := h.subscriptions.Subscribe(h.ctx, userId, basic.Id)
	require.NoError(t, err)

	_, err = h.subscriptions.ChangePlan(h.ctx, userId, basic.Id)
	assertBusinessRule(t, err, "plan_id", msgSamePlan)

	_, err = h.subscriptions.ChangePlan(h.ctx, userId, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	changed, err := h.subscriptions.ChangePlan(h.ctx, userId, pro.Id)
	require.NoError(t, err)
	assert.Equal(t, original.Id, changed.Id)
	assert.Equal(t, pro.Id, changed.PlanId)

	current, err := h.subscriptions.Current(h.ctx, userId)
	require.NoError(t, err)
	require.NotNil(t, current.Plan)
	assert.Equal(t, "pro", current.Plan.Slug)
}

func TestCancel(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	sub, err := h.subscriptions.Subscribe(h.ctx, userId, h.plan("basic", 1990, 0).Id)
	require.NoError(t, err)

	canceled, err := h.subscriptions.Cancel(h.ctx, userId)
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)
	require.NotNil(t, canceled.CancelAt)
	assert.True(t, canceled.CanceledAt.Equal(testNow))
	assert.True(t, canceled.CancelAt.Equal(sub.CurrentPeriodEnd))
	assert.False(t, canceled.AutoRenew)

	_, err = h.subscriptions.Current(h.ctx, userId)
	assert.True(t, apperror.IsNotFound(err))

	_, err = h.subscriptions.Cancel(h.ctx, userId)
	assertBusinessRule(t, err, "subscription", msgNoActiveSubscription)
}

func TestHistory_NewestFirst(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	basic := h.plan("basic", 1990, 0)
	pro := h.plan("pro", 4990, 0)

	_, err := h.subscriptions.Subscribe(h.ctx, userId, basic.Id)
	require.NoError(t, err)
	_, err = h.subscriptions.Cancel(h.ctx, userId)
	require.NoError(t, err)

	h.clock.At = testNow.Add(time.Hour)
	_, err = h.subscriptions.Subscribe(h.ctx, userId, pro.Id)
	require.NoError(t, err)

	history, err := h.subscriptions.History(h.ctx, userId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, pro.Id, history[0].PlanId)
	assert.Equal(t, entity.SubscriptionStatusCanceled, history[1].Status)

	others, err := h.subscriptions.History(h.ctx, h.user())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestUpdateAutoPay_RequiresEligibleDefault(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	_, err := h.subscriptions.Subscribe(h.ctx, userId, h.plan("basic", 1990, 0).Id)
	require.NoError(t, err)

	_, err = h.subscriptions.UpdateAutoPay(h.ctx, userId, true)
	assertBusinessRule(t, err, "auto_pay", msgAutoPayRequiresDefault)

	h.addMethod(userId, entity.PaymentMethodTypeBoleto)
	_, err = h.subscriptions.UpdateAutoPay(h.ctx, userId, true)
	assertBusinessRule(t, err, "auto_pay", msgAutoPayRequiresDefault)

	debit := h.addMethod(userId, entity.PaymentMethodTypeBankDebit)
	_, err = h.methods.SetDefault(h.ctx, debit.Id, userId)
	require.NoError(t, err)

	sub, err := h.subscriptions.UpdateAutoPay(h.ctx, userId, true)
	require.NoError(t, err)
	assert.True(t, sub.AutoPay)

	sub, err = h.subscriptions.UpdateAutoPay(h.ctx, userId, false)
	require.NoError(t, err)
	assert.False(t, sub.AutoPay)
}

func TestUpdateAutoRenew(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	_, err := h.subscriptions.Subscribe(h.ctx, userId, h.plan("basic", 1990, 0).Id)
	require.NoError(t, err)

	sub, err := h.subscriptions.UpdateAutoRenew(h.ctx, userId, false)
	require.NoError(t, err)
	assert.False(t, sub.AutoRenew)
}

func TestSyncAutoPay_NoopWhenEligible(t *testing.T) {
	h := newHarness(t)
	userId := h.user()
	h.subscribeWithAutoPay(userId)
	h.sink.reset()

	disabled, err := h.subscriptions.SyncAutoPay(h.ctx, userId)
	require.NoError(t, err)
	assert.False(t, disabled)
	assert.Empty(t, h.sink.types())

	disabled, err = h.subscriptions.SyncAutoPay(h.ctx, h.user())
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestListPlans_ActiveByPrice(t *testing.T) {
	h := newHarness(t)
	h.plan("pro", 4990, 0)
	h.plan("basic", 1990, 0)

	plans, err := h.subscriptions.ListPlans(h.ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "basic", plans[0].Slug)
	assert.Equal(t, "pro", plans[1].Slug)

	h.plan("enterprise", 9990, 0)
	cached, err := h.subscriptions.ListPlans(h.ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}
