package memory

import (
	"context"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestFactory() (*Store, unitofwork.RepositoryFactory) {
	store := NewStore(clock.Fixed{At: storeNow})
	return store, NewRepositoryFactory(store)
}

func newInvoice(number string) *entity.Invoice {
	return &entity.Invoice{
		Id:            uuid.New(),
		UserId:        uuid.New(),
		InvoiceNumber: number,
		Status:        entity.InvoiceStatusOpen,
		AmountInCents: 9990,
		Currency:      money.CurrencyBRL,
		DueDate:       storeNow,
		CreatedAt:     storeNow,
		UpdatedAt:     storeNow,
	}
}

func findInvoice(t *testing.T, f unitofwork.RepositoryFactory, id uuid.UUID) *entity.Invoice {
	t.Helper()
	inv, err := f.NewUnitOfWork(context.Background()).InvoiceRepository().FindByID(context.Background(), id)
	require.NoError(t, err)
	return inv
}

func TestRollbackKeepsWritesCommittedOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	_, f := newTestFactory()

	tx := f.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	inTx := newInvoice("INV-TX")
	require.NoError(t, tx.InvoiceRepository().Create(ctx, inTx))

	outside := newInvoice("INV-OUT")
	done := make(chan error, 1)
	go func() {
		done <- f.NewUnitOfWork(ctx).InvoiceRepository().Create(ctx, outside)
	}()

	require.NoError(t, tx.Rollback())
	require.NoError(t, <-done)

	assert.Nil(t, findInvoice(t, f, inTx.Id), "rolled back insert must vanish")
	assert.NotNil(t, findInvoice(t, f, outside.Id), "committed insert must survive the rollback")
}

func TestUncommittedWritesAreInvisibleOutside(t *testing.T) {
	ctx := context.Background()
	_, f := newTestFactory()

	inv := newInvoice("INV-1")
	require.NoError(t, f.NewUnitOfWork(ctx).InvoiceRepository().Create(ctx, inv))

	settle := func(tx unitofwork.UnitOfWork) {
		locked, err := tx.InvoiceRepository().FindByIDForUpdate(ctx, inv.Id)
		require.NoError(t, err)
		require.NoError(t, locked.ApplyPayment(locked.AmountInCents, storeNow))
		require.NoError(t, tx.InvoiceRepository().Update(ctx, locked))

		seen, err := tx.InvoiceRepository().FindByID(ctx, inv.Id)
		require.NoError(t, err)
		assert.Equal(t, entity.InvoiceStatusPaid, seen.Status, "a transaction reads its own writes")
	}

	t.Run("rollback", func(t *testing.T) {
		tx := f.NewUnitOfWork(ctx)
		require.NoError(t, tx.Begin(ctx))
		settle(tx)

		outside := findInvoice(t, f, inv.Id)
		assert.Equal(t, entity.InvoiceStatusOpen, outside.Status)
		assert.Equal(t, money.Cents(0), outside.AmountPaidInCents)

		require.NoError(t, tx.Rollback())
		assert.Equal(t, entity.InvoiceStatusOpen, findInvoice(t, f, inv.Id).Status)
	})

	t.Run("commit", func(t *testing.T) {
		tx := f.NewUnitOfWork(ctx)
		require.NoError(t, tx.Begin(ctx))
		settle(tx)
		assert.Equal(t, entity.InvoiceStatusOpen, findInvoice(t, f, inv.Id).Status)

		require.NoError(t, tx.Commit())
		committed := findInvoice(t, f, inv.Id)
		assert.Equal(t, entity.InvoiceStatusPaid, committed.Status)
		assert.Equal(t, money.Cents(9990), committed.AmountPaidInCents)
	})
}

func TestRepositoryObtainedBeforeBeginJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	_, f := newTestFactory()

	uow := f.NewUnitOfWork(ctx)
	invoices := uow.InvoiceRepository()
	require.NoError(t, uow.Begin(ctx))

	inv := newInvoice("INV-EARLY")
	require.NoError(t, invoices.Create(ctx, inv))
	require.NoError(t, uow.Rollback())

	assert.Nil(t, findInvoice(t, f, inv.Id))
}

func TestTransactionStateErrors(t *testing.T) {
	ctx := context.Background()
	_, f := newTestFactory()
	uow := f.NewUnitOfWork(ctx)

	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback())

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	require.NoError(t, uow.Commit())
	assert.Error(t, uow.Rollback(), "rollback after commit reports no transaction")
}

func TestSoftDeleteUsesStoreClock(t *testing.T) {
	ctx := context.Background()
	store, f := newTestFactory()
	methods := f.NewUnitOfWork(ctx).PaymentMethodRepository()

	method := &entity.PaymentMethod{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Type:      entity.PaymentMethodTypePix,
		IsDefault: true,
		CreatedAt: storeNow,
	}
	require.NoError(t, methods.Create(ctx, method))
	require.NoError(t, methods.Delete(ctx, method.Id))

	found, err := methods.FindByID(ctx, method.Id)
	require.NoError(t, err)
	assert.Nil(t, found)

	store.read(func(s *state) {
		row, ok := s.methods.get(method.Id)
		require.True(t, ok)
		require.NotNil(t, row.DeletedAt)
		assert.True(t, row.DeletedAt.Equal(storeNow))
	})
}
