// FILE: internal/entity/invoice_entity.go
package entity

import (
	"time"

	"billing-engine-be/internal/pkg/apperror"
	"billing-engine-be/internal/pkg/money"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
	InvoiceStatusUncollectible InvoiceStatus = "uncollectible"
)

const (
	MsgInvoiceNotPayable    = "Invoice is not payable."
	MsgAmountExceedsBalance = "Amount exceeds the invoice outstanding balance."
	MsgAmountMustBePositive = "Amount must be greater than zero."
	FieldInvoice            = "invoice"
	FieldAmountInCents      = "amount_in_cents"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusVoid, InvoiceStatusUncollectible:
		return true
	}
	return false
}

type Invoice struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	SubscriptionId    *uuid.UUID
	InvoiceNumber     string
	Status            InvoiceStatus
	AmountInCents     money.Cents
	AmountPaidInCents money.Cents
	Currency          string
	Description       string
	DueDate           time.Time // calendar date, midnight UTC
	PaidAt            *time.Time
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relations
	Payments []*Payment
}

// AmountDue is what is still owed. Never negative.
func (i *Invoice) AmountDue() money.Cents {
	return i.AmountInCents.Sub(i.AmountPaidInCents)
}

func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceStatusOpen
}

// IsOverdue reports an open invoice whose due date is strictly before today.
func (i *Invoice) IsOverdue(today time.Time) bool {
	return i.Status == InvoiceStatusOpen && i.DueDate.Before(today)
}

// ValidatePaymentAmount checks an amount against the current balance.
func (i *Invoice) ValidatePaymentAmount(amount money.Cents) error {
	if !amount.IsPositive() {
		return apperror.BusinessRule(FieldAmountInCents, MsgAmountMustBePositive)
	}
	if amount > i.AmountDue() {
		return apperror.BusinessRule(FieldAmountInCents, MsgAmountExceedsBalance)
	}
	return nil
}

// ApplyPayment books a settled amount. The invoice becomes paid once the paid
// total reaches the invoiced amount, otherwise it stays open.
func (i *Invoice) ApplyPayment(amount money.Cents, now time.Time) error {
	if !i.IsPayable() {
		return apperror.BusinessRule(FieldInvoice, MsgInvoiceNotPayable)
	}
	if err := i.ValidatePaymentAmount(amount); err != nil {
		return err
	}

	i.AmountPaidInCents = i.AmountPaidInCents.Add(amount)
	if i.AmountPaidInCents >= i.AmountInCents {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &now
	}
	i.UpdatedAt = now
	return nil
}
