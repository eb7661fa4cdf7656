package implementation

import (
	"context"
	"errors"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/model"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/contract"
	"billing-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewInvoiceRepository(db *gorm.DB) contract.InvoiceRepository {
	return &InvoiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, invoice *entity.Invoice) error {
	m := r.mapper.InvoiceToModel(invoice)
	if err := r.db.WithContext(ctx).Omit("Payments").Create(m).Error; err != nil {
		return err
	}
	invoice.CreatedAt = m.CreatedAt
	invoice.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, invoice *entity.Invoice) error {
	m := r.mapper.InvoiceToModel(invoice)
	if err := r.db.WithContext(ctx).Omit("Payments").Save(m).Error; err != nil {
		return err
	}
	invoice.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *InvoiceRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *InvoiceRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
}

func (r *InvoiceRepositoryImpl) FindByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.findOne(ctx, specification.Filter("invoice_number", number))
}

func (r *InvoiceRepositoryImpl) ListForUser(ctx context.Context, userId uuid.UUID, filter contract.InvoiceFilter) ([]*entity.Invoice, int64, error) {
	specs := []specification.Specification{specification.OwnedBy{UserID: userId}}
	if filter.Status != nil {
		specs = append(specs, specification.InvoiceStatusIs{Status: *filter.Status})
	}

	var total int64
	if err := applySpecifications(r.db.WithContext(ctx).Model(&model.Invoice{}), specs...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "due_date", Desc: true},
		specification.Pagination{Limit: filter.Limit, Offset: filter.Offset},
	)
	invoices, err := r.findAll(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *InvoiceRepositoryImpl) CountOpenForUser(ctx context.Context, userId uuid.UUID) (int64, error) {
	return r.count(ctx, specification.OwnedBy{UserID: userId}, specification.OpenInvoices())
}

func (r *InvoiceRepositoryImpl) CountOverdueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (int64, error) {
	return r.count(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OpenInvoices(),
		specification.DueBefore{Date: today},
	)
}

func (r *InvoiceRepositoryImpl) OutstandingBalanceForUser(ctx context.Context, userId uuid.UUID) (money.Cents, error) {
	var total int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Invoice{}),
		specification.OwnedBy{UserID: userId},
		specification.OpenInvoices(),
	)
	if err := query.Select("COALESCE(SUM(amount_in_cents - amount_paid_in_cents), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return money.Cents(total), nil
}

func (r *InvoiceRepositoryImpl) NextDueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (*entity.Invoice, error) {
	return r.findOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OpenInvoices(),
		specification.DueOnOrAfter{Date: today},
		specification.OrderBy{Field: "due_date"},
	)
}

func (r *InvoiceRepositoryImpl) DueOn(ctx context.Context, date time.Time) ([]*entity.Invoice, error) {
	return r.findAll(ctx,
		specification.OpenInvoices(),
		specification.DueOn{Date: date},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *InvoiceRepositoryImpl) DueBetween(ctx context.Context, from, to time.Time) ([]*entity.Invoice, error) {
	return r.findAll(ctx,
		specification.OpenInvoices(),
		specification.DueBetween{From: from, To: to},
		specification.OrderBy{Field: "due_date"},
	)
}

func (r *InvoiceRepositoryImpl) OverdueAsOf(ctx context.Context, today time.Time) ([]*entity.Invoice, error) {
	return r.findAll(ctx,
		specification.OpenInvoices(),
		specification.DueBefore{Date: today},
		specification.OrderBy{Field: "due_date"},
	)
}

func (r *InvoiceRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	var m model.Invoice
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.InvoiceToEntity(&m), nil
}

func (r *InvoiceRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	var models []*model.Invoice
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	invoices := make([]*entity.Invoice, len(models))
	for i, m := range models {
		invoices[i] = r.mapper.InvoiceToEntity(m)
	}
	return invoices, nil
}

func (r *InvoiceRepositoryImpl) count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var total int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Invoice{}), specs...).Count(&total).Error
	return total, err
}
