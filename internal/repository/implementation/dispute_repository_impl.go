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

type DisputeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewDisputeRepository(db *gorm.DB) contract.DisputeRepository {
	return &DisputeRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *DisputeRepositoryImpl) Create(ctx context.Context, dispute *entity.Dispute) error {
	m := r.mapper.DisputeToModel(dispute)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	dispute.CreatedAt = m.CreatedAt
	dispute.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *DisputeRepositoryImpl) Update(ctx context.Context, dispute *entity.Dispute) error {
	m := r.mapper.DisputeToModel(dispute)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	dispute.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *DisputeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	var m model.Dispute
	if err := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DisputeToEntity(&m), nil
}

func (r *DisputeRepositoryImpl) ListForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Dispute, error) {
	var models []*model.Dispute
	query := applySpecifications(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	disputes := make([]*entity.Dispute, len(models))
	for i, m := range models {
		disputes[i] = r.mapper.DisputeToEntity(m)
	}
	return disputes, nil
}

func (r *DisputeRepositoryImpl) HasActiveForPayment(ctx context.Context, paymentId uuid.UUID) (bool, error) {
	var total int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Dispute{}),
		specification.Filter("payment_id", paymentId),
		specification.DisputeStatusIn{Statuses: entity.ActiveDisputeStatuses},
	).Count(&total).Error
	return total > 0, err
}
