package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TierQuery selects the single best eligible override within one resolution
// tier. Nil SellerID (or CategoryID) means the column must be NULL, not
// "any value", so a query never widens past its tier.
type TierQuery struct {
	SellerID   *snowflake.ID
	CategoryID *snowflake.ID
	Amount     decimal.Decimal
	At         time.Time
}

type ListFilter struct {
	IsActive   *bool
	SellerID   *snowflake.ID
	CategoryID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, override *SellerCommissionOverride) error
	// ScopeExists reports whether any override already covers the exact
	// (seller_id, category_id) pair, with nil matching NULL columns.
	ScopeExists(ctx context.Context, db *gorm.DB, sellerID, categoryID *snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SellerCommissionOverride, error)
	FindBestInTier(ctx context.Context, db *gorm.DB, q TierQuery) (*SellerCommissionOverride, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*SellerCommissionOverride, error)
	Update(ctx context.Context, db *gorm.DB, override *SellerCommissionOverride) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
