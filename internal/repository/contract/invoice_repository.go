package contract

import (
	"context"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/money"

	"github.com/google/uuid"
)

type InvoiceFilter struct {
	Status *entity.InvoiceStatus
	Limit  int
	Offset int
}

// InvoiceRepository queries take calendar dates (midnight UTC).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// FindByIDForUpdate locks the invoice row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindByNumber(ctx context.Context, number string) (*entity.Invoice, error)

	// ListForUser is ordered by due date, newest first.
	ListForUser(ctx context.Context, userId uuid.UUID, filter InvoiceFilter) ([]*entity.Invoice, int64, error)
	CountOpenForUser(ctx context.Context, userId uuid.UUID) (int64, error)
	CountOverdueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (int64, error)
	OutstandingBalanceForUser(ctx context.Context, userId uuid.UUID) (money.Cents, error)
	NextDueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (*entity.Invoice, error)

	// Sweep selections, all restricted to open invoices.
	DueOn(ctx context.Context, date time.Time) ([]*entity.Invoice, error)
	DueBetween(ctx context.Context, from, to time.Time) ([]*entity.Invoice, error)
	OverdueAsOf(ctx context.Context, today time.Time) ([]*entity.Invoice, error)
}
