package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ValueType declares how a stored setting value should be coerced.
type ValueType string

const (
	ValueTypeString  ValueType = "STRING"
	ValueTypeNumber  ValueType = "NUMBER"
	ValueTypeBoolean ValueType = "BOOLEAN"
)

// Well-known setting keys read by the commission and payout engines.
const (
	KeyGlobalCommissionRate = "global_commission_rate"
	KeyCommissionMinAmount  = "commission_min_amount"
	KeyCommissionMaxAmount  = "commission_max_amount"
	KeyCommissionFixedFee   = "commission_fixed_fee"
	KeyCommissionOnShipping = "commission_applies_to_shipping"
	KeyPayoutMinimumAmount  = "payout.minimum_amount"
)

// Setting is a platform-wide key/value entry. Values are stored as text and
// coerced by callers according to ValueType.
type Setting struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Key         string       `gorm:"type:text;not null;uniqueIndex:ux_system_settings_key" json:"key"`
	Category    string       `gorm:"type:text;not null;index" json:"category"`
	Value       string       `gorm:"type:text;not null" json:"value"`
	ValueType   ValueType    `gorm:"type:text;not null" json:"value_type"`
	Label       string       `gorm:"type:text;not null" json:"label"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	IsPublic    bool         `gorm:"not null;default:false" json:"is_public"`
	// No gorm default tag: a false value must reach the insert instead of
	// being dropped in favor of the column default.
	IsEditable bool      `gorm:"not null" json:"is_editable"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "system_settings" }
