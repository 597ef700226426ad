package domain

import (
	"context"
	"errors"

	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound = errors.New("transaction_not_found")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrCommissionNotFound  = errors.New("commission_not_found")
	ErrUnknownRuleType     = errors.New("unknown_rule_type")
)

// SellerSummary aggregates a seller's lifetime commission position.
type SellerSummary struct {
	SellerID      snowflake.ID    `json:"seller_id"`
	TotalEarned   decimal.Decimal `json:"total_earned"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	TotalCount    int64           `json:"total_count"`
}

// Statistics is the admin-facing platform roll-up.
type Statistics struct {
	TotalCount   int64             `json:"total_count"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	ByStatus     []StatusAggregate `json:"by_status"`
	PaidOutCount int64             `json:"paid_out_count"`
}

type ListRequest struct {
	Filter ListFilter
	Page   pagination.Pagination
}

type ListResponse struct {
	Data       []Commission        `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	// RecordForTransaction loads the full transaction graph and writes one
	// commission per order line, allocating shipping proportionally when
	// enabled. Re-invocation for the same transaction is a no-op per line.
	RecordForTransaction(ctx context.Context, transactionID snowflake.ID) error

	// Resolve walks the override tiers and active rules for one line and
	// returns the winning rate, or nil when the platform default applies.
	Resolve(ctx context.Context, sellerID snowflake.ID, categoryID *snowflake.ID, amount decimal.Decimal) (*RuleMatch, error)

	// Calculate applies a resolved rate to a base amount, including caps
	// and the fixed fee.
	Calculate(ctx context.Context, base decimal.Decimal, match *RuleMatch) (decimal.Decimal, *RuleMatch, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Commission, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	SellerSummary(ctx context.Context, sellerID snowflake.ID) (*SellerSummary, error)
	Statistics(ctx context.Context, f ListFilter) (*Statistics, error)
	TopSellers(ctx context.Context, f ListFilter, limit int) ([]SellerAggregate, error)
	Recent(ctx context.Context, limit int) ([]Commission, error)

	// CancelForOrder voids the PENDING and CONFIRMED commissions of a
	// refunded or cancelled order. Rows already paid out stay PAID.
	CancelForOrder(ctx context.Context, orderID snowflake.ID) (int64, error)
}
