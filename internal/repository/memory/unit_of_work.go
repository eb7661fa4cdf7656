package memory

import (
	"context"
	"fmt"
	"time"

	"billing-engine-be/internal/repository/contract"
	"billing-engine-be/internal/repository/unitofwork"
)

// unitOfWork routes repository calls to its transaction copy while one is
// open and to the committed state otherwise. Repositories resolve the target
// on every call, so one obtained before Begin still joins the transaction.
type unitOfWork struct {
	store *Store
	tx    *state
}

type repositoryFactory struct {
	store *Store
}

// NewRepositoryFactory returns a factory whose units of work all share store.
func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.store.begin()
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	tx := u.tx
	u.tx = nil
	u.store.commit(tx)
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.tx = nil
	u.store.rollback()
	return nil
}

func (u *unitOfWork) read(fn func(*state)) {
	if u.tx != nil {
		fn(u.tx)
		return
	}
	u.store.read(fn)
}

func (u *unitOfWork) write(fn func(*state)) {
	if u.tx != nil {
		fn(u.tx)
		return
	}
	u.store.write(fn)
}

func (u *unitOfWork) now() time.Time {
	return u.store.clock.Now()
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{db: u}
}

func (u *unitOfWork) PlanRepository() contract.PlanRepository {
	return &planRepository{db: u}
}

func (u *unitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{db: u}
}

func (u *unitOfWork) InvoiceRepository() contract.InvoiceRepository {
	return &invoiceRepository{db: u}
}

func (u *unitOfWork) PaymentRepository() contract.PaymentRepository {
	return &paymentRepository{db: u}
}

func (u *unitOfWork) PaymentMethodRepository() contract.PaymentMethodRepository {
	return &paymentMethodRepository{db: u}
}

func (u *unitOfWork) DisputeRepository() contract.DisputeRepository {
	return &disputeRepository{db: u}
}
