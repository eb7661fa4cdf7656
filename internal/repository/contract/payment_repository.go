package contract

import (
	"context"

	"billing-engine-be/internal/entity"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	ListForUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Payment, int64, error)
	ForInvoice(ctx context.Context, invoiceId uuid.UUID) ([]*entity.Payment, error)
	HasPendingForInvoice(ctx context.Context, invoiceId uuid.UUID) (bool, error)
	HasPendingForPaymentMethod(ctx context.Context, methodId uuid.UUID) (bool, error)
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entity.PaymentMethod) error
	Update(ctx context.Context, method *entity.PaymentMethod) error
	// Delete soft-deletes the method.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error)
	// ForUser returns non-deleted methods, default first, then newest first.
	ForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error)
	// LockForUser is ForUser with the rows locked for the transaction.
	LockForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error)
	FindDefaultForUser(ctx context.Context, userId uuid.UUID) (*entity.PaymentMethod, error)
	// ClearDefaultExcept unsets is_default on every method of the user but keepId.
	ClearDefaultExcept(ctx context.Context, userId, keepId uuid.UUID) error
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *entity.Dispute) error
	Update(ctx context.Context, dispute *entity.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error)
	ListForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Dispute, error)
	HasActiveForPayment(ctx context.Context, paymentId uuid.UUID) (bool, error)
}
