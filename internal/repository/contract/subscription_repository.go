package contract

import (
	"context"

	"billing-engine-be/internal/entity"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Plan, error)
	// FindAllActive returns active plans ordered by price.
	FindAllActive(ctx context.Context) ([]*entity.Plan, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	Update(ctx context.Context, subscription *entity.Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error)

	// FindActiveForUser returns the latest trialing or active subscription with
	// its plan, or nil. Inside a transaction the row is locked.
	FindActiveForUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	HistoryForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Subscription, error)
	// FindWithAutoPay returns every trialing or active subscription with auto-pay on.
	FindWithAutoPay(ctx context.Context) ([]*entity.Subscription, error)
}
