package domain

import (
	"context"
	"time"

	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListFilter struct {
	SellerID *snowflake.ID
	Status   *Status
	From     *time.Time
	To       *time.Time
}

type StatusAggregate struct {
	Status Status          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// LinkedTotals summarizes the commissions currently linked to a payout.
type LinkedTotals struct {
	Count  int64
	Amount decimal.Decimal
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payout *Payout) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payout, error)
	Update(ctx context.Context, db *gorm.DB, payout *Payout) error
	List(ctx context.Context, db *gorm.DB, f ListFilter, p pagination.Pagination) ([]Payout, int64, error)
	SummarizeByStatus(ctx context.Context, db *gorm.DB, f ListFilter) ([]StatusAggregate, error)

	// LinkCommissions claims the unpaid, unlinked commissions matching the
	// query for the payout. The payout_id IS NULL guard makes concurrent
	// payout creation safe; a row claimed by another payout is simply not
	// matched.
	LinkCommissions(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, q ClaimQuery, at time.Time) (int64, error)

	// EligibleTotals sums the claimable commissions matching the query
	// without linking them, for threshold checks and previews.
	EligibleTotals(ctx context.Context, db *gorm.DB, q ClaimQuery) (LinkedTotals, error)

	// LinkedTotals sums the commissions linked to the payout.
	LinkedTotals(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) (LinkedTotals, error)

	// UnlinkCommissions releases linked commissions back to the unpaid
	// pool when a payout fails or is cancelled.
	UnlinkCommissions(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, at time.Time) (int64, error)

	// MarkCommissionsPaid finalizes linked commissions on completion,
	// copying the disbursement method and reference onto each row.
	MarkCommissionsPaid(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, method, reference *string, at time.Time) (int64, error)
}
