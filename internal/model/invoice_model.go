package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Invoice struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	SubscriptionId    *uuid.UUID     `gorm:"type:uuid;index"`
	InvoiceNumber     string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	Status            string         `gorm:"type:varchar(20);not null;index"`
	AmountInCents     int64          `gorm:"not null"`
	AmountPaidInCents int64          `gorm:"not null;default:0"`
	Currency          string         `gorm:"type:char(3);not null;default:'BRL'"`
	Description       string         `gorm:"type:text"`
	DueDate           datatypes.Date `gorm:"not null;index"`
	PaidAt            *time.Time
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	// Relations
	Payments []*Payment `gorm:"foreignKey:InvoiceId"`
}

func (Invoice) TableName() string {
	return "invoices"
}
