package specification

import (
	"time"

	"billing-engine-be/internal/entity"

	"gorm.io/gorm"
)

type InvoiceStatusIs struct {
	Status entity.InvoiceStatus
}

func (s InvoiceStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// OpenInvoices is shorthand for InvoiceStatusIs{open}.
func OpenInvoices() Specification {
	return InvoiceStatusIs{Status: entity.InvoiceStatusOpen}
}

// DueOn matches an exact calendar date.
type DueOn struct {
	Date time.Time
}

func (s DueOn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date = ?", s.Date.Format(time.DateOnly))
}

// DueBetween matches due dates in [From, To], both inclusive.
type DueBetween struct {
	From time.Time
	To   time.Time
}

func (s DueBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date BETWEEN ? AND ?", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly))
}

type DueBefore struct {
	Date time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date < ?", s.Date.Format(time.DateOnly))
}

type DueOnOrAfter struct {
	Date time.Time
}

func (s DueOnOrAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date >= ?", s.Date.Format(time.DateOnly))
}

type SubscriptionStatusIn struct {
	Statuses []entity.SubscriptionStatus
}

func (s SubscriptionStatusIn) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}

type PaymentStatusIs struct {
	Status entity.PaymentStatus
}

func (s PaymentStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type DisputeStatusIn struct {
	Statuses []entity.DisputeStatus
}

func (s DisputeStatusIn) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}

// WithPlan preloads the subscription's plan.
type WithPlan struct{}

func (s WithPlan) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Plan")
}
