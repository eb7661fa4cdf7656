package implementation

import (
	"context"
	"errors"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/model"
	"billing-engine-be/internal/repository/contract"
	"billing-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.PlanToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *PlanRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*entity.Plan, error) {
	return r.findOne(ctx, specification.Filter("slug", slug))
}

func (r *PlanRepositoryImpl) FindAllActive(ctx context.Context) ([]*entity.Plan, error) {
	var models []*model.Plan
	query := applySpecifications(r.db.WithContext(ctx),
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "price_in_cents"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	plans := make([]*entity.Plan, len(models))
	for i, m := range models {
		plans[i] = r.mapper.PlanToEntity(m)
	}
	return plans, nil
}

func (r *PlanRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	var m model.Plan
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	locked bool
	mapper *mapper.SubscriptionMapper
}

// NewSubscriptionRepository binds to db. When locked is true, active
// subscription lookups take a row lock.
func NewSubscriptionRepository(db *gorm.DB, locked bool) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		locked: locked,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.SubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Omit("Plan").Create(m).Error; err != nil {
		return err
	}
	subscription.CreatedAt = m.CreatedAt
	subscription.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.SubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Omit("Plan").Save(m).Error; err != nil {
		return err
	}
	subscription.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	var m model.Subscription
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.WithPlan{})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SubscriptionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindActiveForUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.SubscriptionStatusIn{Statuses: entity.ActiveSubscriptionStatuses},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.WithPlan{},
	}
	if r.locked {
		specs = append(specs, specification.ForUpdate{})
	}

	var m model.Subscription
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SubscriptionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) HistoryForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Subscription, error) {
	return r.findAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.WithPlan{},
	)
}

func (r *SubscriptionRepositoryImpl) FindWithAutoPay(ctx context.Context) ([]*entity.Subscription, error) {
	return r.findAll(ctx,
		specification.Filter("auto_pay", true),
		specification.SubscriptionStatusIn{Statuses: entity.ActiveSubscriptionStatuses},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *SubscriptionRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	subs := make([]*entity.Subscription, len(models))
	for i, m := range models {
		subs[i] = r.mapper.SubscriptionToEntity(m)
	}
	return subs, nil
}
