package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/lock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/memory"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Emit(ctx context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType())
	}
	return out
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// failingGateway charges by returning err and delegates the rest to the stub.
type failingGateway struct {
	*gateway.StubGateway
	err error
}

func (g *failingGateway) Charge(ctx context.Context, payment *entity.Payment, method *entity.PaymentMethod) (*entity.SettlementOutcome, error) {
	return nil, g.err
}

type harness struct {
	t          *testing.T
	ctx        context.Context
	clock      *clock.Fixed
	uowFactory unitofwork.RepositoryFactory
	sink       *recordingSink
	gateway    gateway.Gateway

	invoices      IInvoiceService
	payments      IPaymentService
	methods       IPaymentMethodService
	subscriptions ISubscriptionService
	disputes      IDisputeService
	scheduler     IBillingScheduler
}

type harnessOption func(h *harness)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	return newHarnessWithLocker(t, lock.NoopLocker{}, opts...)
}

func newHarnessWithLocker(t *testing.T, locker lock.Locker, opts ...harnessOption) *harness {
	h := &harness{
		t:     t,
		ctx:   context.Background(),
		clock: &clock.Fixed{At: testNow},
		sink:  &recordingSink{},
	}
	h.uowFactory = memory.NewRepositoryFactory(memory.NewStore(h.clock))
	h.gateway = gateway.NewStubGateway(h.clock)
	for _, opt := range opts {
		opt(h)
	}

	log := logger.NewNopLogger()
	h.invoices = NewInvoiceService(h.uowFactory, h.clock, money.CurrencyBRL)
	h.payments = NewPaymentService(h.uowFactory, h.gateway, h.sink, h.clock, log)
	h.subscriptions = NewSubscriptionService(h.uowFactory, memory.NewPlanCache(time.Minute), h.sink, h.clock, log)
	h.methods = NewPaymentMethodService(h.uowFactory, h.gateway, h.subscriptions, h.clock, log)
	h.disputes = NewDisputeService(h.uowFactory, h.gateway, h.clock, log)
	h.scheduler = NewBillingScheduler(h.uowFactory, h.invoices, h.payments, h.subscriptions, h.sink, locker, h.clock, log, SchedulerConfig{
		DueSoonDays:        3,
		AutoPayAdvanceDays: 1,
	})
	return h
}

func (h *harness) uow() unitofwork.UnitOfWork {
	return h.uowFactory.NewUnitOfWork(h.ctx)
}

func (h *harness) today() time.Time {
	return clock.Today(h.clock)
}

func (h *harness) user() uuid.UUID {
	id := uuid.New()
	require.NoError(h.t, h.uow().UserRepository().Create(h.ctx, &entity.User{
		Id:        id,
		Email:     id.String()[:8] + "@example.com",
		FullName:  "Test User",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}))
	return id
}

func (h *harness) plan(slug string, price money.Cents, trialDays int) *entity.Plan {
	plan := &entity.Plan{
		Id:           uuid.New(),
		Name:         slug,
		Slug:         slug,
		PriceInCents: price,
		Currency:     money.CurrencyBRL,
		BillingCycle: entity.BillingCycleMonthly,
		TrialDays:    trialDays,
		IsActive:     true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(h.t, h.uow().PlanRepository().Create(h.ctx, plan))
	return plan
}

func (h *harness) invoice(userId uuid.UUID, amount money.Cents, dueInDays int) *entity.Invoice {
	inv, err := h.invoices.Issue(h.ctx, IssueInvoiceInput{
		UserId:        userId,
		AmountInCents: amount,
		Description:   "Monthly plan",
		DueDate:       h.today().AddDate(0, 0, dueInDays),
	})
	require.NoError(h.t, err)
	return inv
}

func (h *harness) reloadInvoice(id uuid.UUID) *entity.Invoice {
	inv, err := h.uow().InvoiceRepository().FindByID(h.ctx, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, inv)
	return inv
}

func (h *harness) addMethod(userId uuid.UUID, t entity.PaymentMethodType) *entity.PaymentMethod {
	method, err := h.methods.Add(h.ctx, userId, entity.PaymentMethodAttributes{
		Type:       t,
		LastFour:   "4242",
		Brand:      "visa",
		HolderName: "Test User",
	})
	require.NoError(h.t, err)
	return method
}

// subscribeWithAutoPay subscribes userId and turns auto-pay on with a card default.
func (h *harness) subscribeWithAutoPay(userId uuid.UUID) *entity.PaymentMethod {
	card := h.addMethod(userId, entity.PaymentMethodTypeCreditCard)
	_, err := h.subscriptions.Subscribe(h.ctx, userId, h.plan("pro-"+userId.String()[:6], 9990, 0).Id)
	require.NoError(h.t, err)
	_, err = h.subscriptions.UpdateAutoPay(h.ctx, userId, true)
	require.NoError(h.t, err)
	return card
}

func (h *harness) countDefaults(userId uuid.UUID) int {
	methods, err := h.uow().PaymentMethodRepository().ForUser(h.ctx, userId)
	require.NoError(h.t, err)
	n := 0
	for _, m := range methods {
		if m.IsDefault {
			n++
		}
	}
	return n
}

var errGatewayDown = errors.New("connection refused")

func cents(v int64) *money.Cents {
	c := money.Cents(v)
	return &c
}
