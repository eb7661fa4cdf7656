// FILE: internal/entity/payment_entity.go
package entity

import (
	"time"

	"billing-engine-be/internal/pkg/money"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusCanceled   PaymentStatus = "canceled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSucceeded,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCanceled:
		return true
	}
	return false
}

type Payment struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	InvoiceId         uuid.UUID
	PaymentMethodId   *uuid.UUID
	AmountInCents     money.Cents
	Currency          string
	Status            PaymentStatus
	PaymentMethodType PaymentMethodType
	Gateway           string
	GatewayPaymentId  string
	GatewayResponse   map[string]interface{}
	PixQrCode         string
	PixExpiresAt      *time.Time
	BoletoUrl         string
	BoletoBarcode     string
	BoletoExpiresAt   *time.Time
	FailureReason     string
	PaidAt            *time.Time
	FailedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relations
	Invoice *Invoice
}

// SettlementOutcome is what a gateway answers to a charge attempt.
type SettlementOutcome struct {
	Status           PaymentStatus
	GatewayPaymentId string
	PixQrCode        string
	PixExpiresAt     *time.Time
	BoletoUrl        string
	BoletoBarcode    string
	BoletoExpiresAt  *time.Time
	FailureReason    string
	PaidAt           *time.Time
	FailedAt         *time.Time
	Raw              map[string]interface{}
}

// FailedOutcome is used when the gateway could not be reached or timed out.
func FailedOutcome(reason string, now time.Time) *SettlementOutcome {
	return &SettlementOutcome{
		Status:        PaymentStatusFailed,
		FailureReason: reason,
		FailedAt:      &now,
	}
}

// ApplySettlement copies a gateway outcome onto the payment. Method-specific
// fields are only kept for the method that issued them.
func (p *Payment) ApplySettlement(outcome *SettlementOutcome, now time.Time) {
	p.Status = outcome.Status
	p.GatewayPaymentId = outcome.GatewayPaymentId
	p.GatewayResponse = outcome.Raw
	p.FailureReason = outcome.FailureReason
	p.PaidAt = outcome.PaidAt
	p.FailedAt = outcome.FailedAt
	p.UpdatedAt = now

	p.PixQrCode, p.PixExpiresAt = "", nil
	p.BoletoUrl, p.BoletoBarcode, p.BoletoExpiresAt = "", "", nil

	switch p.PaymentMethodType {
	case PaymentMethodTypePix:
		p.PixQrCode = outcome.PixQrCode
		p.PixExpiresAt = outcome.PixExpiresAt
	case PaymentMethodTypeBoleto:
		p.BoletoUrl = outcome.BoletoUrl
		p.BoletoBarcode = outcome.BoletoBarcode
		p.BoletoExpiresAt = outcome.BoletoExpiresAt
	}

	if p.Status == PaymentStatusSucceeded && p.PaidAt == nil {
		p.PaidAt = &now
	}
	if p.Status == PaymentStatusFailed && p.FailedAt == nil {
		p.FailedAt = &now
	}
}

func (p *Payment) IsSucceeded() bool {
	return p.Status == PaymentStatusSucceeded
}
