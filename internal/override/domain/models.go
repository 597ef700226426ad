package domain

import (
	"time"

	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SellerCommissionOverride is an operator-approved deal scoped more narrowly
// than standard rules. Overrides always outrank standard rules during
// resolution regardless of numeric priority.
type SellerCommissionOverride struct {
	ID             snowflake.ID        `gorm:"primaryKey" json:"id"`
	SellerID       *snowflake.ID       `gorm:"index;uniqueIndex:ux_overrides_seller_category,priority:1" json:"seller_id,omitempty"`
	CategoryID     *snowflake.ID       `gorm:"index;uniqueIndex:ux_overrides_seller_category,priority:2" json:"category_id,omitempty"`
	CommissionType ruledomain.RuleType `gorm:"type:text;not null" json:"commission_type"`
	CommissionRate decimal.Decimal     `gorm:"type:numeric(12,4);not null" json:"commission_rate"`
	MinOrderValue  *decimal.Decimal    `gorm:"type:numeric(12,2)" json:"min_order_value,omitempty"`
	MaxOrderValue  *decimal.Decimal    `gorm:"type:numeric(12,2)" json:"max_order_value,omitempty"`
	Priority       int                 `gorm:"not null;default:100" json:"priority"`
	ValidFrom      *time.Time          `gorm:"" json:"valid_from,omitempty"`
	ValidUntil     *time.Time          `gorm:"" json:"valid_until,omitempty"`
	IsActive       bool                `gorm:"not null;default:true" json:"is_active"`
	ApprovedBy     string              `gorm:"type:text;not null" json:"approved_by"`
	ApprovedAt     time.Time           `gorm:"not null" json:"approved_at"`
	Notes          string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SellerCommissionOverride) TableName() string { return "seller_commission_overrides" }

// EligibleAt reports whether the override may apply at the given instant and
// order-line amount. Bounds are inclusive; nil bounds are unbounded.
func (o SellerCommissionOverride) EligibleAt(now time.Time, amount decimal.Decimal) bool {
	if !o.IsActive {
		return false
	}
	if o.ValidFrom != nil && o.ValidFrom.After(now) {
		return false
	}
	if o.ValidUntil != nil && o.ValidUntil.Before(now) {
		return false
	}
	if o.MinOrderValue != nil && amount.LessThan(*o.MinOrderValue) {
		return false
	}
	if o.MaxOrderValue != nil && amount.GreaterThan(*o.MaxOrderValue) {
		return false
	}
	return true
}
