package mapper

import (
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/model"
	"billing-engine-be/internal/pkg/money"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:           p.Id,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		PriceInCents: money.Cents(p.PriceInCents),
		Currency:     p.Currency,
		BillingCycle: entity.BillingCycle(p.BillingCycle),
		TrialDays:    p.TrialDays,
		IsActive:     p.IsActive,
		Features:     []string(p.Features),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:           p.Id,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		PriceInCents: int64(p.PriceInCents),
		Currency:     p.Currency,
		BillingCycle: string(p.BillingCycle),
		TrialDays:    p.TrialDays,
		IsActive:     p.IsActive,
		Features:     datatypes.JSONSlice[string](p.Features),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}
	return &entity.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Status:             entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEndsAt:        s.TrialEndsAt,
		CanceledAt:         s.CanceledAt,
		CancelAt:           s.CancelAt,
		AutoRenew:          s.AutoRenew,
		AutoPay:            s.AutoPay,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		DeletedAt:          deletedAt,
		Plan:               m.PlanToEntity(s.Plan),
	}
}

// SubscriptionToModel leaves the Plan relation out so saves never touch plans.
func (m *SubscriptionMapper) SubscriptionToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	out := &model.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		TrialEndsAt:        s.TrialEndsAt,
		CanceledAt:         s.CanceledAt,
		CancelAt:           s.CancelAt,
		AutoRenew:          s.AutoRenew,
		AutoPay:            s.AutoPay,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}
	return out
}
