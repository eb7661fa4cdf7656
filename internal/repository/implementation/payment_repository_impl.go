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

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.PaymentToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	payment.CreatedAt = m.CreatedAt
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.PaymentToModel(payment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

// FindByIDForUpdate serializes dispute openings on the same payment.
func (r *PaymentRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
}

func (r *PaymentRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	var m model.Payment
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PaymentToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) ListForUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Payment, int64, error) {
	var total int64
	owned := specification.OwnedBy{UserID: userId}
	if err := applySpecifications(r.db.WithContext(ctx).Model(&model.Payment{}), owned).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	payments, err := r.findAll(ctx,
		owned,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepositoryImpl) ForInvoice(ctx context.Context, invoiceId uuid.UUID) ([]*entity.Payment, error) {
	return r.findAll(ctx,
		specification.Filter("invoice_id", invoiceId),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *PaymentRepositoryImpl) HasPendingForInvoice(ctx context.Context, invoiceId uuid.UUID) (bool, error) {
	return r.exists(ctx,
		specification.Filter("invoice_id", invoiceId),
		specification.PaymentStatusIs{Status: entity.PaymentStatusPending},
	)
}

func (r *PaymentRepositoryImpl) HasPendingForPaymentMethod(ctx context.Context, methodId uuid.UUID) (bool, error) {
	return r.exists(ctx,
		specification.Filter("payment_method_id", methodId),
		specification.PaymentStatusIs{Status: entity.PaymentStatusPending},
	)
}

func (r *PaymentRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	var models []*model.Payment
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	payments := make([]*entity.Payment, len(models))
	for i, m := range models {
		payments[i] = r.mapper.PaymentToEntity(m)
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) exists(ctx context.Context, specs ...specification.Specification) (bool, error) {
	var total int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Payment{}), specs...).Count(&total).Error
	return total > 0, err
}
