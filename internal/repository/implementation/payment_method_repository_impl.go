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

type PaymentMethodRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewPaymentMethodRepository(db *gorm.DB) contract.PaymentMethodRepository {
	return &PaymentMethodRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *PaymentMethodRepositoryImpl) Create(ctx context.Context, method *entity.PaymentMethod) error {
	m := r.mapper.PaymentMethodToModel(method)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	method.CreatedAt = m.CreatedAt
	method.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentMethodRepositoryImpl) Update(ctx context.Context, method *entity.PaymentMethod) error {
	m := r.mapper.PaymentMethodToModel(method)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	method.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentMethodRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PaymentMethod{}, id).Error
}

func (r *PaymentMethodRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *PaymentMethodRepositoryImpl) ForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error) {
	return r.findAll(ctx, r.forUserSpecs(userId)...)
}

func (r *PaymentMethodRepositoryImpl) LockForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error) {
	return r.findAll(ctx, append(r.forUserSpecs(userId), specification.ForUpdate{})...)
}

func (r *PaymentMethodRepositoryImpl) FindDefaultForUser(ctx context.Context, userId uuid.UUID) (*entity.PaymentMethod, error) {
	return r.findOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.Filter("is_default", true),
	)
}

func (r *PaymentMethodRepositoryImpl) ClearDefaultExcept(ctx context.Context, userId, keepId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PaymentMethod{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userId, keepId, true).
		Update("is_default", false).Error
}

func (r *PaymentMethodRepositoryImpl) forUserSpecs(userId uuid.UUID) []specification.Specification {
	return []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "is_default", Desc: true},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
}

func (r *PaymentMethodRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error) {
	var m model.PaymentMethod
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PaymentMethodToEntity(&m), nil
}

func (r *PaymentMethodRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error) {
	var models []*model.PaymentMethod
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	methods := make([]*entity.PaymentMethod, len(models))
	for i, m := range models {
		methods[i] = r.mapper.PaymentMethodToEntity(m)
	}
	return methods, nil
}
