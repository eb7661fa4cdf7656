package memory

import (
	"context"
	"slices"
	"time"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/contract"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T {
	return &v
}

func ptrs[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// Users

type userRepository struct {
	db *unitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.db.write(func(s *state) {
		s.users.put(user.Id, *user, &s.seq)
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(s *state) {
		if u, ok := s.users.get(id); ok {
			out = ptr(u)
		}
	})
	return out, nil
}

// FindByIDForUpdate needs no row lock; transactions are serialized.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

// Plans

type planRepository struct {
	db *unitOfWork
}

func (r *planRepository) Create(ctx context.Context, plan *entity.Plan) error {
	r.db.write(func(s *state) {
		s.plans.put(plan.Id, *plan, &s.seq)
	})
	return nil
}

func (r *planRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	var out *entity.Plan
	r.db.read(func(s *state) {
		if p, ok := s.plans.get(id); ok {
			out = ptr(p)
		}
	})
	return out, nil
}

func (r *planRepository) FindBySlug(ctx context.Context, slug string) (*entity.Plan, error) {
	var out *entity.Plan
	r.db.read(func(s *state) {
		rows := s.plans.filter(func(p entity.Plan) bool { return p.Slug == slug })
		if len(rows) > 0 {
			out = ptr(rows[0])
		}
	})
	return out, nil
}

func (r *planRepository) FindAllActive(ctx context.Context) ([]*entity.Plan, error) {
	var rows []entity.Plan
	r.db.read(func(s *state) {
		rows = s.plans.filter(func(p entity.Plan) bool { return p.IsActive })
	})
	slices.SortStableFunc(rows, func(a, b entity.Plan) int {
		return int(a.PriceInCents - b.PriceInCents)
	})
	return ptrs(rows), nil
}

// Subscriptions

type subscriptionRepository struct {
	db *unitOfWork
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	return r.Update(ctx, subscription)
}

func (r *subscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	row := *subscription
	row.Plan = nil
	r.db.write(func(s *state) {
		s.subscriptions.put(row.Id, row, &s.seq)
	})
	return nil
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	var out *entity.Subscription
	r.db.read(func(s *state) {
		if sub, ok := s.subscriptions.get(id); ok && sub.DeletedAt == nil {
			out = withPlan(s, sub)
		}
	})
	return out, nil
}

func (r *subscriptionRepository) FindActiveForUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	var out *entity.Subscription
	r.db.read(func(s *state) {
		rows := newestFirst(s.subscriptions.filter(func(sub entity.Subscription) bool {
			return sub.UserId == userId && sub.DeletedAt == nil && sub.Status.HasAccess()
		}), func(sub entity.Subscription) time.Time { return sub.CreatedAt })
		if len(rows) > 0 {
			out = withPlan(s, rows[0])
		}
	})
	return out, nil
}

func (r *subscriptionRepository) HistoryForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	r.db.read(func(s *state) {
		rows := newestFirst(s.subscriptions.filter(func(sub entity.Subscription) bool {
			return sub.UserId == userId && sub.DeletedAt == nil
		}), func(sub entity.Subscription) time.Time { return sub.CreatedAt })
		for _, sub := range rows {
			out = append(out, withPlan(s, sub))
		}
	})
	return out, nil
}

func (r *subscriptionRepository) FindWithAutoPay(ctx context.Context) ([]*entity.Subscription, error) {
	var rows []entity.Subscription
	r.db.read(func(s *state) {
		rows = s.subscriptions.filter(func(sub entity.Subscription) bool {
			return sub.AutoPay && sub.DeletedAt == nil && sub.Status.HasAccess()
		})
	})
	return ptrs(rows), nil
}

func withPlan(s *state, sub entity.Subscription) *entity.Subscription {
	if p, ok := s.plans.get(sub.PlanId); ok {
		sub.Plan = ptr(p)
	}
	return &sub
}

// newestFirst reverses insertion order, then stable-sorts by the timestamp
// descending, so equal timestamps keep the newer insert first.
func newestFirst[T any](rows []T, at func(T) time.Time) []T {
	slices.Reverse(rows)
	slices.SortStableFunc(rows, func(a, b T) int {
		return at(b).Compare(at(a))
	})
	return rows
}

// Invoices

type invoiceRepository struct {
	db *unitOfWork
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.Update(ctx, invoice)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	row := *invoice
	row.Payments = nil
	r.db.write(func(s *state) {
		s.invoices.put(row.Id, row, &s.seq)
	})
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.db.read(func(s *state) {
		if inv, ok := s.invoices.get(id); ok {
			out = ptr(inv)
		}
	})
	return out, nil
}

func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *invoiceRepository) FindByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	rows := r.matching(func(inv entity.Invoice) bool { return inv.InvoiceNumber == number }, false)
	if len(rows) == 0 {
		return nil, nil
	}
	return ptr(rows[0]), nil
}

func (r *invoiceRepository) ListForUser(ctx context.Context, userId uuid.UUID, filter contract.InvoiceFilter) ([]*entity.Invoice, int64, error) {
	rows := r.matching(func(inv entity.Invoice) bool {
		return inv.UserId == userId && (filter.Status == nil || inv.Status == *filter.Status)
	}, false)
	rows = newestFirst(rows, func(inv entity.Invoice) time.Time { return inv.DueDate })
	total := int64(len(rows))
	return ptrs(page(rows, filter.Limit, filter.Offset)), total, nil
}

func (r *invoiceRepository) CountOpenForUser(ctx context.Context, userId uuid.UUID) (int64, error) {
	rows := r.matching(func(inv entity.Invoice) bool { return inv.UserId == userId }, true)
	return int64(len(rows)), nil
}

func (r *invoiceRepository) CountOverdueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (int64, error) {
	rows := r.matching(func(inv entity.Invoice) bool {
		return inv.UserId == userId && inv.DueDate.Before(today)
	}, true)
	return int64(len(rows)), nil
}

func (r *invoiceRepository) OutstandingBalanceForUser(ctx context.Context, userId uuid.UUID) (money.Cents, error) {
	var total money.Cents
	for _, inv := range r.matching(func(inv entity.Invoice) bool { return inv.UserId == userId }, true) {
		total = total.Add(inv.AmountDue())
	}
	return total, nil
}

func (r *invoiceRepository) NextDueForUser(ctx context.Context, userId uuid.UUID, today time.Time) (*entity.Invoice, error) {
	rows := r.byDueDate(func(inv entity.Invoice) bool {
		return inv.UserId == userId && !inv.DueDate.Before(today)
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *invoiceRepository) DueOn(ctx context.Context, date time.Time) ([]*entity.Invoice, error) {
	return ptrs(r.matching(func(inv entity.Invoice) bool { return inv.DueDate.Equal(date) }, true)), nil
}

func (r *invoiceRepository) DueBetween(ctx context.Context, from, to time.Time) ([]*entity.Invoice, error) {
	return r.byDueDate(func(inv entity.Invoice) bool {
		return !inv.DueDate.Before(from) && !inv.DueDate.After(to)
	}), nil
}

func (r *invoiceRepository) OverdueAsOf(ctx context.Context, today time.Time) ([]*entity.Invoice, error) {
	return r.byDueDate(func(inv entity.Invoice) bool { return inv.DueDate.Before(today) }), nil
}

func (r *invoiceRepository) matching(keep func(entity.Invoice) bool, openOnly bool) []entity.Invoice {
	var rows []entity.Invoice
	r.db.read(func(s *state) {
		rows = s.invoices.filter(func(inv entity.Invoice) bool {
			if openOnly && inv.Status != entity.InvoiceStatusOpen {
				return false
			}
			return keep(inv)
		})
	})
	return rows
}

func (r *invoiceRepository) byDueDate(keep func(entity.Invoice) bool) []*entity.Invoice {
	rows := r.matching(keep, true)
	slices.SortStableFunc(rows, func(a, b entity.Invoice) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return ptrs(rows)
}

// Payments

type paymentRepository struct {
	db *unitOfWork
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return r.Update(ctx, payment)
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	row := *payment
	row.Invoice = nil
	r.db.write(func(s *state) {
		s.payments.put(row.Id, row, &s.seq)
	})
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var out *entity.Payment
	r.db.read(func(s *state) {
		if p, ok := s.payments.get(id); ok {
			out = ptr(p)
		}
	})
	return out, nil
}

func (r *paymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepository) ListForUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Payment, int64, error) {
	rows := r.newest(func(p entity.Payment) bool { return p.UserId == userId })
	return ptrs(page(rows, limit, offset)), int64(len(rows)), nil
}

func (r *paymentRepository) ForInvoice(ctx context.Context, invoiceId uuid.UUID) ([]*entity.Payment, error) {
	return ptrs(r.newest(func(p entity.Payment) bool { return p.InvoiceId == invoiceId })), nil
}

func (r *paymentRepository) HasPendingForInvoice(ctx context.Context, invoiceId uuid.UUID) (bool, error) {
	rows := r.newest(func(p entity.Payment) bool {
		return p.InvoiceId == invoiceId && p.Status == entity.PaymentStatusPending
	})
	return len(rows) > 0, nil
}

func (r *paymentRepository) HasPendingForPaymentMethod(ctx context.Context, methodId uuid.UUID) (bool, error) {
	rows := r.newest(func(p entity.Payment) bool {
		return p.PaymentMethodId != nil && *p.PaymentMethodId == methodId && p.Status == entity.PaymentStatusPending
	})
	return len(rows) > 0, nil
}

func (r *paymentRepository) newest(keep func(entity.Payment) bool) []entity.Payment {
	var rows []entity.Payment
	r.db.read(func(s *state) {
		rows = s.payments.filter(keep)
	})
	return newestFirst(rows, func(p entity.Payment) time.Time { return p.CreatedAt })
}

// Payment methods

type paymentMethodRepository struct {
	db *unitOfWork
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *entity.PaymentMethod) error {
	return r.Update(ctx, method)
}

func (r *paymentMethodRepository) Update(ctx context.Context, method *entity.PaymentMethod) error {
	r.db.write(func(s *state) {
		s.methods.put(method.Id, *method, &s.seq)
	})
	return nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.write(func(s *state) {
		if m, ok := s.methods.get(id); ok && m.DeletedAt == nil {
			now := r.db.now()
			m.DeletedAt = &now
			s.methods.put(id, m, &s.seq)
		}
	})
	return nil
}

func (r *paymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	var out *entity.PaymentMethod
	r.db.read(func(s *state) {
		if m, ok := s.methods.get(id); ok && m.DeletedAt == nil {
			out = ptr(m)
		}
	})
	return out, nil
}

func (r *paymentMethodRepository) ForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error) {
	var rows []entity.PaymentMethod
	r.db.read(func(s *state) {
		rows = s.methods.filter(func(m entity.PaymentMethod) bool {
			return m.UserId == userId && m.DeletedAt == nil
		})
	})
	rows = newestFirst(rows, func(m entity.PaymentMethod) time.Time { return m.CreatedAt })
	slices.SortStableFunc(rows, func(a, b entity.PaymentMethod) int {
		switch {
		case a.IsDefault == b.IsDefault:
			return 0
		case a.IsDefault:
			return -1
		default:
			return 1
		}
	})
	return ptrs(rows), nil
}

func (r *paymentMethodRepository) LockForUser(ctx context.Context, userId uuid.UUID) ([]*entity.PaymentMethod, error) {
	return r.ForUser(ctx, userId)
}

func (r *paymentMethodRepository) FindDefaultForUser(ctx context.Context, userId uuid.UUID) (*entity.PaymentMethod, error) {
	methods, _ := r.ForUser(ctx, userId)
	if len(methods) == 0 || !methods[0].IsDefault {
		return nil, nil
	}
	return methods[0], nil
}

func (r *paymentMethodRepository) ClearDefaultExcept(ctx context.Context, userId, keepId uuid.UUID) error {
	r.db.write(func(s *state) {
		for _, m := range s.methods.filter(func(m entity.PaymentMethod) bool {
			return m.UserId == userId && m.Id != keepId && m.IsDefault
		}) {
			m.IsDefault = false
			s.methods.put(m.Id, m, &s.seq)
		}
	})
	return nil
}

// Disputes

type disputeRepository struct {
	db *unitOfWork
}

func (r *disputeRepository) Create(ctx context.Context, dispute *entity.Dispute) error {
	return r.Update(ctx, dispute)
}

func (r *disputeRepository) Update(ctx context.Context, dispute *entity.Dispute) error {
	row := *dispute
	row.Payment = nil
	r.db.write(func(s *state) {
		s.disputes.put(row.Id, row, &s.seq)
	})
	return nil
}

func (r *disputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	var out *entity.Dispute
	r.db.read(func(s *state) {
		if d, ok := s.disputes.get(id); ok {
			out = ptr(d)
		}
	})
	return out, nil
}

func (r *disputeRepository) ListForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Dispute, error) {
	var rows []entity.Dispute
	r.db.read(func(s *state) {
		rows = s.disputes.filter(func(d entity.Dispute) bool { return d.UserId == userId })
	})
	return ptrs(newestFirst(rows, func(d entity.Dispute) time.Time { return d.CreatedAt })), nil
}

func (r *disputeRepository) HasActiveForPayment(ctx context.Context, paymentId uuid.UUID) (bool, error) {
	var found bool
	r.db.read(func(s *state) {
		found = len(s.disputes.filter(func(d entity.Dispute) bool {
			return d.PaymentId == paymentId && d.Status.IsActive()
		})) > 0
	})
	return found, nil
}
