package unitofwork

import (
	"context"

	"billing-engine-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one transaction once Begin has
// been called, or to the plain connection otherwise.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	InvoiceRepository() contract.InvoiceRepository
	PaymentRepository() contract.PaymentRepository
	PaymentMethodRepository() contract.PaymentMethodRepository
	DisputeRepository() contract.DisputeRepository
}
