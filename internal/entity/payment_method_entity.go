// FILE: internal/entity/payment_method_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	PaymentMethodTypeCreditCard PaymentMethodType = "credit_card"
	PaymentMethodTypeDebitCard  PaymentMethodType = "debit_card"
	PaymentMethodTypePix        PaymentMethodType = "pix"
	PaymentMethodTypeBoleto     PaymentMethodType = "boleto"
	PaymentMethodTypeBankDebit  PaymentMethodType = "bank_debit"
)

type paymentMethodTraits struct {
	requiresStoredMethod    bool
	supportsAutomaticCharge bool
}

// Cards need a stored, tokenized method to be charged. Only methods that can
// be charged without the user acting each cycle qualify for auto-pay.
var paymentMethodTypeTraits = map[PaymentMethodType]paymentMethodTraits{
	PaymentMethodTypeCreditCard: {requiresStoredMethod: true, supportsAutomaticCharge: true},
	PaymentMethodTypeDebitCard:  {requiresStoredMethod: true, supportsAutomaticCharge: true},
	PaymentMethodTypePix:        {},
	PaymentMethodTypeBoleto:     {},
	PaymentMethodTypeBankDebit:  {supportsAutomaticCharge: true},
}

func PaymentMethodTypes() []PaymentMethodType {
	return []PaymentMethodType{
		PaymentMethodTypeCreditCard,
		PaymentMethodTypeDebitCard,
		PaymentMethodTypePix,
		PaymentMethodTypeBoleto,
		PaymentMethodTypeBankDebit,
	}
}

func (t PaymentMethodType) IsValid() bool {
	_, ok := paymentMethodTypeTraits[t]
	return ok
}

func (t PaymentMethodType) RequiresStoredMethod() bool {
	return paymentMethodTypeTraits[t].requiresStoredMethod
}

func (t PaymentMethodType) SupportsAutomaticCharge() bool {
	return paymentMethodTypeTraits[t].supportsAutomaticCharge
}

type PaymentMethod struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Type         PaymentMethodType
	IsDefault    bool
	Gateway      string
	GatewayToken string
	LastFour     string
	Brand        string
	ExpiryMonth  int
	ExpiryYear   int
	HolderName   string
	PixKey       string
	BankName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// SupportsAutomaticCharge is nil-safe: a missing method never qualifies.
func (m *PaymentMethod) SupportsAutomaticCharge() bool {
	return m != nil && m.Type.SupportsAutomaticCharge()
}

// PaymentMethodAttributes is the raw input used to register a method.
type PaymentMethodAttributes struct {
	Type        PaymentMethodType
	LastFour    string
	Brand       string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
	PixKey      string
	BankName    string
}
