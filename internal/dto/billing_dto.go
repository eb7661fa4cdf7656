// FILE: internal/dto/billing_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Requests ---

type InitiatePaymentRequest struct {
	PaymentMethodType string     `json:"payment_method_type" validate:"required,oneof=credit_card debit_card pix boleto bank_debit"`
	AmountInCents     *int64     `json:"amount_in_cents,omitempty" validate:"omitempty,gt=0"`
	PaymentMethodId   *uuid.UUID `json:"payment_method_id,omitempty"`
}

type AddPaymentMethodRequest struct {
	Type        string `json:"type" validate:"required,oneof=credit_card debit_card pix boleto bank_debit"`
	LastFour    string `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
	Brand       string `json:"brand,omitempty" validate:"omitempty,max=50"`
	ExpiryMonth int    `json:"expiry_month,omitempty" validate:"omitempty,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year,omitempty" validate:"omitempty,min=2000"`
	HolderName  string `json:"holder_name,omitempty" validate:"omitempty,max=255"`
	PixKey      string `json:"pix_key,omitempty" validate:"omitempty,max=255"`
	BankName    string `json:"bank_name,omitempty" validate:"omitempty,max=255"`
}

type SubscribeRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type ChangePlanRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type OpenDisputeRequest struct {
	Reason      string `json:"reason" validate:"required,oneof=fraudulent duplicate product_not_received product_not_as_described unrecognized other"`
	Description string `json:"description" validate:"max=2000"`
}

// --- Responses ---

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

type PlanResponse struct {
	Id             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description,omitempty"`
	PriceInCents   int64     `json:"price_in_cents"`
	PriceFormatted string    `json:"price_formatted"`
	Currency       string    `json:"currency"`
	BillingCycle   string    `json:"billing_cycle"`
	TrialDays      int       `json:"trial_days"`
	Features       []string  `json:"features"`
}

type SubscriptionResponse struct {
	Id                 uuid.UUID     `json:"id"`
	Status             string        `json:"status"`
	HasAccess          bool          `json:"has_access"`
	CurrentPeriodStart time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   time.Time     `json:"current_period_end"`
	TrialEndsAt        *time.Time    `json:"trial_ends_at"`
	CanceledAt         *time.Time    `json:"canceled_at"`
	CancelAt           *time.Time    `json:"cancel_at"`
	AutoRenew          bool          `json:"auto_renew"`
	AutoPay            bool          `json:"auto_pay"`
	Plan               *PlanResponse `json:"plan,omitempty"`
}

type InvoiceResponse struct {
	Id                 uuid.UUID          `json:"id"`
	InvoiceNumber      string             `json:"invoice_number"`
	Status             string             `json:"status"`
	AmountInCents      int64              `json:"amount_in_cents"`
	AmountPaidInCents  int64              `json:"amount_paid_in_cents"`
	AmountDueInCents   int64              `json:"amount_due_in_cents"`
	AmountDueFormatted string             `json:"amount_due_formatted"`
	Currency           string             `json:"currency"`
	Description        string             `json:"description,omitempty"`
	DueDate            string             `json:"due_date"`
	IsOverdue          bool               `json:"is_overdue"`
	PaidAt             *time.Time         `json:"paid_at"`
	PeriodStart        *time.Time         `json:"period_start"`
	PeriodEnd          *time.Time         `json:"period_end"`
	Payments           []*PaymentResponse `json:"payments,omitempty"`
}

type PaymentResponse struct {
	Id                uuid.UUID  `json:"id"`
	InvoiceId         uuid.UUID  `json:"invoice_id"`
	PaymentMethodId   *uuid.UUID `json:"payment_method_id"`
	AmountInCents     int64      `json:"amount_in_cents"`
	AmountFormatted   string     `json:"amount_formatted"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	PaymentMethodType string     `json:"payment_method_type"`
	PixQrCode         string     `json:"pix_qr_code,omitempty"`
	PixExpiresAt      *time.Time `json:"pix_expires_at,omitempty"`
	BoletoUrl         string     `json:"boleto_url,omitempty"`
	BoletoBarcode     string     `json:"boleto_barcode,omitempty"`
	BoletoExpiresAt   *time.Time `json:"boleto_expires_at,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	PaidAt            *time.Time `json:"paid_at"`
	FailedAt          *time.Time `json:"failed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type PaymentMethodResponse struct {
	Id                      uuid.UUID `json:"id"`
	Type                    string    `json:"type"`
	IsDefault               bool      `json:"is_default"`
	SupportsAutomaticCharge bool      `json:"supports_automatic_charge"`
	LastFour                string    `json:"last_four,omitempty"`
	Brand                   string    `json:"brand,omitempty"`
	ExpiryMonth             int       `json:"expiry_month,omitempty"`
	ExpiryYear              int       `json:"expiry_year,omitempty"`
	HolderName              string    `json:"holder_name,omitempty"`
	PixKey                  string    `json:"pix_key,omitempty"`
	BankName                string    `json:"bank_name,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

type DisputeResponse struct {
	Id               uuid.UUID  `json:"id"`
	PaymentId        uuid.UUID  `json:"payment_id"`
	Status           string     `json:"status"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description,omitempty"`
	GatewayDisputeId string     `json:"gateway_dispute_id"`
	IsWithdrawable   bool       `json:"is_withdrawable"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	WithdrawnAt      *time.Time `json:"withdrawn_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

type DashboardResponse struct {
	OutstandingBalanceInCents int64                 `json:"outstanding_balance_in_cents"`
	OutstandingBalance        string                `json:"outstanding_balance_formatted"`
	OpenInvoices              int64                 `json:"open_invoices"`
	OverdueInvoices           int64                 `json:"overdue_invoices"`
	NextDue                   *InvoiceResponse      `json:"next_due"`
	Subscription              *SubscriptionResponse `json:"subscription"`
}

type InvoiceListResponse struct {
	Data []*InvoiceResponse `json:"data"`
	Meta PageMeta           `json:"meta"`
}

type PaymentListResponse struct {
	Data []*PaymentResponse `json:"data"`
	Meta PageMeta           `json:"meta"`
}
