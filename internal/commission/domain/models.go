package domain

import (
	"time"

	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// RuleSource records which resolution tier produced a commission's rate.
type RuleSource string

const (
	RuleSourceOverride RuleSource = "OVERRIDE"
	RuleSourceRule     RuleSource = "RULE"
	RuleSourceDefault  RuleSource = "DEFAULT"
)

// RuleMatch is the outcome of rule resolution for one order line. A nil
// match means the platform default rate applies.
type RuleMatch struct {
	RuleID *snowflake.ID
	Source RuleSource
	Type   ruledomain.RuleType
	Value  decimal.Decimal
}

// Commission is one earned-commission record per order line. RuleType and
// RuleValue are snapshots of the rate in force at recording time; editing
// or deleting the originating rule later never changes this record.
type Commission struct {
	ID               snowflake.ID        `gorm:"primaryKey" json:"id"`
	TransactionID    snowflake.ID        `gorm:"not null;index;uniqueIndex:ux_commissions_txn_item,priority:1" json:"transaction_id"`
	OrderID          snowflake.ID        `gorm:"not null;index" json:"order_id"`
	OrderItemID      snowflake.ID        `gorm:"not null;uniqueIndex:ux_commissions_txn_item,priority:2" json:"order_item_id"`
	SellerID         snowflake.ID        `gorm:"not null;index" json:"seller_id"`
	StoreID          snowflake.ID        `gorm:"not null;index" json:"store_id"`
	RuleID           *snowflake.ID       `gorm:"index" json:"rule_id,omitempty"`
	RuleSource       RuleSource          `gorm:"type:text;not null" json:"rule_source"`
	RuleType         ruledomain.RuleType `gorm:"type:text;not null" json:"rule_type"`
	RuleValue        decimal.Decimal     `gorm:"type:numeric(12,4);not null" json:"rule_value"`
	OrderAmount      decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"order_amount"`
	CommissionAmount decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"commission_amount"`
	Currency         string              `gorm:"type:text;not null" json:"currency"`
	Status           Status              `gorm:"type:text;not null;index" json:"status"`
	PaidOut          bool                `gorm:"not null;default:false" json:"paid_out"`
	PaidOutAt        *time.Time          `gorm:"" json:"paid_out_at,omitempty"`
	PayoutMethod     *string             `gorm:"type:text" json:"payout_method,omitempty"`
	PayoutReference  *string             `gorm:"type:text" json:"payout_reference,omitempty"`
	PayoutID         *snowflake.ID       `gorm:"index" json:"payout_id,omitempty"`
	CreatedAt        time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Commission) TableName() string { return "commissions" }
