// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"billing-engine-be/internal/pkg/money"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingCycle string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"

	BillingCycleMonthly    BillingCycle = "monthly"
	BillingCycleQuarterly  BillingCycle = "quarterly"
	BillingCycleSemiannual BillingCycle = "semiannual"
	BillingCycleAnnual     BillingCycle = "annual"
)

// ActiveSubscriptionStatuses are the statuses that grant access. A user holds
// at most one subscription in any of them.
var ActiveSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusTrialing,
	SubscriptionStatusActive,
}

func (s SubscriptionStatus) HasAccess() bool {
	return s == SubscriptionStatusTrialing || s == SubscriptionStatusActive
}

// billingCycleMonths is the length of each cycle in calendar months.
var billingCycleMonths = map[BillingCycle]int{
	BillingCycleMonthly:    1,
	BillingCycleQuarterly:  3,
	BillingCycleSemiannual: 6,
	BillingCycleAnnual:     12,
}

func (c BillingCycle) IsValid() bool {
	_, ok := billingCycleMonths[c]
	return ok
}

func (c BillingCycle) Months() int {
	return billingCycleMonths[c]
}

// PeriodEnd returns the end of a billing period that starts at start.
func (c BillingCycle) PeriodEnd(start time.Time) time.Time {
	return start.AddDate(0, c.Months(), 0)
}

type Plan struct {
	Id           uuid.UUID
	Name         string
	Slug         string
	Description  string
	PriceInCents money.Cents
	Currency     string
	BillingCycle BillingCycle
	TrialDays    int
	IsActive     bool
	Features     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Plan) HasTrial() bool {
	return p.TrialDays > 0
}

type Subscription struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	PlanId             uuid.UUID
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEndsAt        *time.Time
	CanceledAt         *time.Time
	CancelAt           *time.Time
	AutoRenew          bool
	AutoPay            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time

	// Relations
	Plan *Plan
}

// NewSubscription starts a subscription to plan at now. Plans with trial days
// start trialing; everything else starts active.
func NewSubscription(userId uuid.UUID, plan *Plan, now time.Time) *Subscription {
	sub := &Subscription{
		Id:                 uuid.New(),
		UserId:             userId,
		PlanId:             plan.Id,
		Status:             SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   plan.BillingCycle.PeriodEnd(now),
		AutoRenew:          true,
		CreatedAt:          now,
		UpdatedAt:          now,
		Plan:               plan,
	}

	if plan.HasTrial() {
		trialEnd := now.AddDate(0, 0, plan.TrialDays)
		sub.Status = SubscriptionStatusTrialing
		sub.TrialEndsAt = &trialEnd
	}

	return sub
}

// Cancel marks the subscription canceled. Access is scheduled to stop at the
// end of the current period.
func (s *Subscription) Cancel(now time.Time) {
	cancelAt := s.CurrentPeriodEnd
	s.Status = SubscriptionStatusCanceled
	s.CanceledAt = &now
	s.CancelAt = &cancelAt
	s.AutoRenew = false
	s.UpdatedAt = now
}
