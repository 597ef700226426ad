package domain

import (
	"context"
	"time"

	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter narrows commission listings. Nil pointers mean "no filter".
type ListFilter struct {
	SellerID *snowflake.ID
	StoreID  *snowflake.ID
	OrderID  *snowflake.ID
	Status   *Status
	PaidOut  *bool
	PayoutID *snowflake.ID
	From     *time.Time
	To       *time.Time
}

// StatusAggregate is a per-status roll-up of count and amount.
type StatusAggregate struct {
	Status Status          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SellerAggregate is a per-seller roll-up used by top-seller reports.
type SellerAggregate struct {
	SellerID    snowflake.ID    `json:"seller_id"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Repository interface {
	// Insert writes one commission and reports whether a row was actually
	// written. A conflict on (transaction_id, order_item_id) is not an
	// error; it returns false.
	Insert(ctx context.Context, db *gorm.DB, c *Commission) (bool, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Commission, error)
	List(ctx context.Context, db *gorm.DB, f ListFilter, p pagination.Pagination) ([]Commission, int64, error)
	ListByPayout(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) ([]Commission, error)

	SummarizeByStatus(ctx context.Context, db *gorm.DB, f ListFilter) ([]StatusAggregate, error)
	TopSellers(ctx context.Context, db *gorm.DB, f ListFilter, limit int) ([]SellerAggregate, error)
	Recent(ctx context.Context, db *gorm.DB, limit int) ([]Commission, error)

	// UpdateForOrder moves the order's PENDING and CONFIRMED commissions to the given
	// status and returns the number of rows changed.
	UpdateForOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID, status Status, at time.Time) (int64, error)
}
