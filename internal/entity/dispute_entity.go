// FILE: internal/entity/dispute_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type DisputeStatus string
type DisputeReason string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusWon         DisputeStatus = "won"
	DisputeStatusLost        DisputeStatus = "lost"
	DisputeStatusWithdrawn   DisputeStatus = "withdrawn"

	DisputeReasonFraudulent            DisputeReason = "fraudulent"
	DisputeReasonDuplicate             DisputeReason = "duplicate"
	DisputeReasonProductNotReceived    DisputeReason = "product_not_received"
	DisputeReasonProductNotAsDescribed DisputeReason = "product_not_as_described"
	DisputeReasonUnrecognized          DisputeReason = "unrecognized"
	DisputeReasonOther                 DisputeReason = "other"
)

// ActiveDisputeStatuses block opening a second dispute on the same payment.
var ActiveDisputeStatuses = []DisputeStatus{DisputeStatusOpen, DisputeStatusUnderReview}

// Only an open dispute can be withdrawn; under_review is already with the gateway.
func (s DisputeStatus) IsWithdrawable() bool {
	return s == DisputeStatusOpen
}

func (s DisputeStatus) IsActive() bool {
	return s == DisputeStatusOpen || s == DisputeStatusUnderReview
}

func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeStatusWon || s == DisputeStatusLost || s == DisputeStatusWithdrawn
}

func DisputeReasons() []DisputeReason {
	return []DisputeReason{
		DisputeReasonFraudulent,
		DisputeReasonDuplicate,
		DisputeReasonProductNotReceived,
		DisputeReasonProductNotAsDescribed,
		DisputeReasonUnrecognized,
		DisputeReasonOther,
	}
}

func (r DisputeReason) IsValid() bool {
	for _, known := range DisputeReasons() {
		if r == known {
			return true
		}
	}
	return false
}

type Dispute struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	PaymentId        uuid.UUID
	Status           DisputeStatus
	Reason           DisputeReason
	Description      string
	GatewayDisputeId string
	ResolvedAt       *time.Time
	WithdrawnAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Relations
	Payment *Payment
}

func (d *Dispute) Withdraw(now time.Time) {
	d.Status = DisputeStatusWithdrawn
	d.WithdrawnAt = &now
	d.UpdatedAt = now
}
