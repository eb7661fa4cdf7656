package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Plan struct {
	Id           uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string                      `gorm:"type:varchar(255);not null"`
	Slug         string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string                      `gorm:"type:text"`
	PriceInCents int64                       `gorm:"not null"`
	Currency     string                      `gorm:"type:char(3);not null;default:'BRL'"`
	BillingCycle string                      `gorm:"type:varchar(20);not null"`
	TrialDays    int                         `gorm:"not null;default:0"`
	IsActive     bool                        `gorm:"default:true"`
	Features     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "plans"
}

type Subscription struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId             uuid.UUID `gorm:"type:uuid;not null;index"`
	Status             string    `gorm:"type:varchar(20);not null;index"`
	CurrentPeriodStart time.Time `gorm:"not null"`
	CurrentPeriodEnd   time.Time `gorm:"not null"`
	TrialEndsAt        *time.Time
	CanceledAt         *time.Time
	CancelAt           *time.Time
	AutoRenew          bool           `gorm:"not null;default:true"`
	AutoPay            bool           `gorm:"not null;default:false"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`

	// Relations
	Plan *Plan `gorm:"foreignKey:PlanId"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
