package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Payment struct {
	Id                uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceId         uuid.UUID         `gorm:"type:uuid;not null;index"`
	PaymentMethodId   *uuid.UUID        `gorm:"type:uuid;index"`
	AmountInCents     int64             `gorm:"not null"`
	Currency          string            `gorm:"type:char(3);not null"`
	Status            string            `gorm:"type:varchar(20);not null;index"`
	PaymentMethodType string            `gorm:"type:varchar(20);not null"`
	Gateway           string            `gorm:"type:varchar(50);not null"`
	GatewayPaymentId  string            `gorm:"type:varchar(255);index"`
	GatewayResponse   datatypes.JSONMap `gorm:"type:jsonb"`
	PixQrCode         string            `gorm:"type:text"`
	PixExpiresAt      *time.Time
	BoletoUrl         string `gorm:"type:text"`
	BoletoBarcode     string `gorm:"type:varchar(100)"`
	BoletoExpiresAt   *time.Time
	FailureReason     string `gorm:"type:text"`
	PaidAt            *time.Time
	FailedAt          *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

type PaymentMethod struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type         string         `gorm:"type:varchar(20);not null"`
	IsDefault    bool           `gorm:"not null;default:false"`
	Gateway      string         `gorm:"type:varchar(50);not null"`
	GatewayToken string         `gorm:"type:varchar(255)"`
	LastFour     string         `gorm:"type:varchar(4)"`
	Brand        string         `gorm:"type:varchar(50)"`
	ExpiryMonth  int            `gorm:"default:0"`
	ExpiryYear   int            `gorm:"default:0"`
	HolderName   string         `gorm:"type:varchar(255)"`
	PixKey       string         `gorm:"type:varchar(255)"`
	BankName     string         `gorm:"type:varchar(255)"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

type Dispute struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentId        uuid.UUID `gorm:"type:uuid;not null;index"`
	Status           string    `gorm:"type:varchar(20);not null;index"`
	Reason           string    `gorm:"type:varchar(50);not null"`
	Description      string    `gorm:"type:text"`
	GatewayDisputeId string    `gorm:"type:varchar(255)"`
	ResolvedAt       *time.Time
	WithdrawnAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Dispute) TableName() string {
	return "disputes"
}
