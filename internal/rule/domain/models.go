package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RuleType selects how a rule's value is applied to a commission base.
type RuleType string

const (
	RuleTypePercentage RuleType = "PERCENTAGE"
	RuleTypeFixed      RuleType = "FIXED"
)

// CommissionRule is a standing platform rule. A nil SellerID or CategoryID
// widens the rule's scope; both nil is the global default. Historical
// commissions snapshot the rule's type and value, so editing a rule never
// rewrites past records.
type CommissionRule struct {
	ID            snowflake.ID     `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"type:text;not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description,omitempty"`
	Type          RuleType         `gorm:"type:text;not null" json:"type"`
	Value         decimal.Decimal  `gorm:"type:numeric(12,4);not null" json:"value"`
	CategoryID    *snowflake.ID    `gorm:"index" json:"category_id,omitempty"`
	SellerID      *snowflake.ID    `gorm:"index" json:"seller_id,omitempty"`
	MinOrderValue *decimal.Decimal `gorm:"type:numeric(12,2)" json:"min_order_value,omitempty"`
	MaxOrderValue *decimal.Decimal `gorm:"type:numeric(12,2)" json:"max_order_value,omitempty"`
	Priority      int              `gorm:"not null;default:0" json:"priority"`
	ValidFrom     *time.Time       `gorm:"" json:"valid_from,omitempty"`
	ValidUntil    *time.Time       `gorm:"" json:"valid_until,omitempty"`
	IsActive      bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CommissionRule) TableName() string { return "commission_rules" }

// EligibleAt reports whether the rule may apply at the given instant and
// order-line amount. Bounds are inclusive; nil bounds are unbounded.
func (r CommissionRule) EligibleAt(now time.Time, amount decimal.Decimal) bool {
	if !r.IsActive {
		return false
	}
	if r.ValidFrom != nil && r.ValidFrom.After(now) {
		return false
	}
	if r.ValidUntil != nil && r.ValidUntil.Before(now) {
		return false
	}
	if r.MinOrderValue != nil && amount.LessThan(*r.MinOrderValue) {
		return false
	}
	if r.MaxOrderValue != nil && amount.GreaterThan(*r.MaxOrderValue) {
		return false
	}
	return true
}
