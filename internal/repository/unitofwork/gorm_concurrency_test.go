package unitofwork_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/memory"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gormServices struct {
	factory       unitofwork.RepositoryFactory
	invoices      service.IInvoiceService
	payments      service.IPaymentService
	methods       service.IPaymentMethodService
	subscriptions service.ISubscriptionService
	disputes      service.IDisputeService
}

func newGormServices(t *testing.T) *gormServices {
	factory := unitofwork.NewRepositoryFactory(unitofwork.OpenTestDB(t))
	sysClock := clock.System{}
	log := logger.NewNopLogger()
	sink := notification.NewLogSink(log)
	gw := gateway.NewStubGateway(sysClock)

	subscriptions := service.NewSubscriptionService(factory, memory.NewPlanCache(time.Minute), sink, sysClock, log)
	return &gormServices{
		factory:       factory,
		invoices:      service.NewInvoiceService(factory, sysClock, money.CurrencyBRL),
		payments:      service.NewPaymentService(factory, gw, sink, sysClock, log),
		methods:       service.NewPaymentMethodService(factory, gw, subscriptions, sysClock, log),
		subscriptions: subscriptions,
		disputes:      service.NewDisputeService(factory, gw, sysClock, log),
	}
}

func (s *gormServices) user(t *testing.T) uuid.UUID {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()
	require.NoError(t, s.factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, &entity.User{
		Id:        id,
		Email:     "race-" + id.String() + "@example.com",
		FullName:  "Race User",
		CreatedAt: now,
		UpdatedAt: now,
	}))
	return id
}

func (s *gormServices) card(t *testing.T, userId uuid.UUID) *entity.PaymentMethod {
	method, err := s.methods.Add(context.Background(), userId, entity.PaymentMethodAttributes{
		Type:     entity.PaymentMethodTypeCreditCard,
		LastFour: "4242",
	})
	require.NoError(t, err)
	return method
}

// parallel runs fn n times at once and returns how many calls succeeded.
// Losing calls must fail with a business rule, never a database error.
func parallel(t *testing.T, n int, fn func() error) int {
	t.Helper()
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.True(t, apperror.IsBusinessRule(err), "unexpected error: %v", err)
	}
	return ok
}

func TestGormConcurrentInvariants(t *testing.T) {
	s := newGormServices(t)
	ctx := context.Background()

	t.Run("first subscriptions serialize on the user row", func(t *testing.T) {
		userId := s.user(t)
		plan := &entity.Plan{
			Id:           uuid.New(),
			Name:         "Race Plan",
			Slug:         "race-" + uuid.NewString(),
			PriceInCents: 2990,
			Currency:     money.CurrencyBRL,
			BillingCycle: entity.BillingCycleMonthly,
			IsActive:     true,
		}
		require.NoError(t, s.factory.NewUnitOfWork(ctx).PlanRepository().Create(ctx, plan))

		ok := parallel(t, 10, func() error {
			_, err := s.subscriptions.Subscribe(ctx, userId, plan.Id)
			return err
		})
		assert.Equal(t, 1, ok)

		history, err := s.subscriptions.History(ctx, userId)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("first payment methods leave one default", func(t *testing.T) {
		userId := s.user(t)

		ok := parallel(t, 10, func() error {
			_, err := s.methods.Add(ctx, userId, entity.PaymentMethodAttributes{Type: entity.PaymentMethodTypePix})
			return err
		})
		assert.Equal(t, 10, ok)

		methods, err := s.methods.List(ctx, userId)
		require.NoError(t, err)
		defaults := 0
		for _, m := range methods {
			if m.IsDefault {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults)
	})

	t.Run("concurrent payments never overpay", func(t *testing.T) {
		userId := s.user(t)
		card := s.card(t, userId)
		inv, err := s.invoices.Issue(ctx, service.IssueInvoiceInput{
			UserId:        userId,
			AmountInCents: 9990,
			DueDate:       clock.Today(clock.System{}).AddDate(0, 0, 5),
		})
		require.NoError(t, err)

		amount := money.Cents(6000)
		ok := parallel(t, 10, func() error {
			_, err := s.payments.InitiatePayment(ctx, inv.Id, userId, service.InitiatePaymentInput{
				MethodType:      entity.PaymentMethodTypeCreditCard,
				AmountInCents:   &amount,
				PaymentMethodId: &card.Id,
			})
			return err
		})
		assert.Equal(t, 1, ok)

		reloaded, err := s.factory.NewUnitOfWork(ctx).InvoiceRepository().FindByID(ctx, inv.Id)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(6000), reloaded.AmountPaidInCents)
	})

	t.Run("first disputes serialize on the payment row", func(t *testing.T) {
		userId := s.user(t)
		card := s.card(t, userId)
		inv, err := s.invoices.Issue(ctx, service.IssueInvoiceInput{
			UserId:        userId,
			AmountInCents: 1500,
			DueDate:       clock.Today(clock.System{}).AddDate(0, 0, 5),
		})
		require.NoError(t, err)
		payment, err := s.payments.InitiatePayment(ctx, inv.Id, userId, service.InitiatePaymentInput{
			MethodType:      entity.PaymentMethodTypeCreditCard,
			PaymentMethodId: &card.Id,
		})
		require.NoError(t, err)
		require.True(t, payment.IsSucceeded())

		ok := parallel(t, 5, func() error {
			_, err := s.disputes.Open(ctx, payment.Id, userId, entity.DisputeReasonDuplicate, "")
			return err
		})
		assert.Equal(t, 1, ok)
	})
}
