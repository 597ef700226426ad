package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the payout lifecycle. Completion is reachable
// from PENDING directly (processing is an optional intermediate step),
// failure and cancellation from any non-terminal state. Terminal payouts
// never move again.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCompleted ||
			next == StatusFailed || next == StatusCancelled
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed || next == StatusCancelled
	}
	return false
}

// Payout groups a seller's unpaid commissions into one disbursement.
// Amount and CommissionCount reflect the linked set at creation time. A
// nil period bound means the window is open on that side.
type Payout struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	SellerID         snowflake.ID    `gorm:"not null;index" json:"seller_id"`
	StoreID          snowflake.ID    `gorm:"not null;index" json:"store_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string          `gorm:"type:text;not null" json:"currency"`
	CommissionCount  int             `gorm:"not null" json:"commission_count"`
	PaymentMethod    string          `gorm:"type:text;not null" json:"payment_method"`
	PeriodStart      *time.Time      `gorm:"" json:"period_start,omitempty"`
	PeriodEnd        *time.Time      `gorm:"" json:"period_end,omitempty"`
	Status           Status          `gorm:"type:text;not null;index" json:"status"`
	PaymentReference *string         `gorm:"type:text" json:"payment_reference,omitempty"`
	PaymentProof     *string         `gorm:"type:text" json:"payment_proof,omitempty"`
	Notes            string          `gorm:"type:text" json:"notes,omitempty"`
	ProcessedAt      *time.Time      `gorm:"" json:"processed_at,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payout) TableName() string { return "payouts" }
