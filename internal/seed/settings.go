// Package seed provisions the default system settings on startup so a
// fresh deployment calculates commissions without any manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type defaultSetting struct {
	Key         string
	Category    string
	Value       string
	ValueType   settingsdomain.ValueType
	Label       string
	Description string
	IsPublic    bool
}

var defaultSettings = []defaultSetting{
	{
		Key:         settingsdomain.KeyGlobalCommissionRate,
		Category:    "commission",
		Value:       "10",
		ValueType:   settingsdomain.ValueTypeNumber,
		Label:       "Global commission rate",
		Description: "Percentage applied when no rule or override matches.",
		IsPublic:    true,
	},
	{
		Key:         settingsdomain.KeyCommissionMinAmount,
		Category:    "commission",
		Value:       "0",
		ValueType:   settingsdomain.ValueTypeNumber,
		Label:       "Minimum commission amount",
		Description: "Floor for percentage commissions. Zero disables the floor.",
	},
	{
		Key:         settingsdomain.KeyCommissionMaxAmount,
		Category:    "commission",
		Value:       "0",
		ValueType:   settingsdomain.ValueTypeNumber,
		Label:       "Maximum commission amount",
		Description: "Cap for percentage commissions. Zero disables the cap.",
	},
	{
		Key:         settingsdomain.KeyCommissionFixedFee,
		Category:    "commission",
		Value:       "0",
		ValueType:   settingsdomain.ValueTypeNumber,
		Label:       "Fixed commission fee",
		Description: "Flat fee added to every commission.",
	},
	{
		Key:         settingsdomain.KeyCommissionOnShipping,
		Category:    "commission",
		Value:       "false",
		ValueType:   settingsdomain.ValueTypeBoolean,
		Label:       "Apply commission to shipping",
		Description: "Allocate shipping proportionally into the commission base.",
	},
	{
		Key:         settingsdomain.KeyPayoutMinimumAmount,
		Category:    "payout",
		Value:       "50",
		ValueType:   settingsdomain.ValueTypeNumber,
		Label:       "Minimum payout amount",
		Description: "Sellers accrue commissions until this threshold is reached.",
		IsPublic:    true,
	},
}

// EnsureDefaultSettings inserts any missing well-known settings. Existing
// rows are left untouched so operator edits survive restarts.
func EnsureDefaultSettings(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range defaultSettings {
			row := settingsdomain.Setting{
				ID:          node.Generate(),
				Key:         def.Key,
				Category:    def.Category,
				Value:       def.Value,
				ValueType:   def.ValueType,
				Label:       def.Label,
				Description: def.Description,
				IsPublic:    def.IsPublic,
				IsEditable:  true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			err := tx.WithContext(ctx).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "key"}},
					DoNothing: true,
				}).
				Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
