package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CandidateQuery selects the single best standard rule for a line: any
// active rule whose seller matches, whose category matches, or which is the
// global default, filtered by validity window and order-value bounds,
// ordered by priority desc then created_at desc.
type CandidateQuery struct {
	SellerID   snowflake.ID
	CategoryID *snowflake.ID
	Amount     decimal.Decimal
	At         time.Time
}

type ListFilter struct {
	IsActive   *bool
	CategoryID *snowflake.ID
	SellerID   *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionRule, error)
	FindBestCandidate(ctx context.Context, db *gorm.DB, q CandidateQuery) (*CommissionRule, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*CommissionRule, error)
	Update(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
