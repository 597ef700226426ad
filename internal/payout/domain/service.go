package domain

import (
	"context"
	"errors"
	"time"

	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("payout_not_found")
	ErrBelowMinimum      = errors.New("payout_below_minimum")
	ErrNothingToPay      = errors.New("payout_nothing_to_pay")
	ErrInvalidTransition = errors.New("invalid_payout_status_transition")
	ErrInvalidMethod     = errors.New("invalid_payout_method")
	ErrInvalidPeriod     = errors.New("invalid_payout_period")
)

type CreatePayoutRequest struct {
	SellerID      snowflake.ID
	StoreID       snowflake.ID
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	PaymentMethod string
	Currency      string
	Notes         string
}

// ProcessPayoutRequest optionally attaches the external transfer evidence
// when the payout moves into processing.
type ProcessPayoutRequest struct {
	Reference string
	Proof     string
}

// CompletePayoutRequest finalizes a payout. Reference and Proof override
// any values stored during processing; the disbursement method was fixed
// at creation.
type CompletePayoutRequest struct {
	Reference string
	Proof     string
}

// ClaimQuery scopes which commissions a payout may claim. Nil StoreID
// matches every store; nil period bounds leave the window open.
type ClaimQuery struct {
	SellerID    snowflake.ID
	StoreID     *snowflake.ID
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

type ListRequest struct {
	Filter ListFilter
	Page   pagination.Pagination
}

type ListResponse struct {
	Data       []Payout            `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// PayoutDetails pairs a payout with the commissions it disburses.
type PayoutDetails struct {
	Payout      Payout                        `json:"payout"`
	Commissions []commissiondomain.Commission `json:"commissions"`
}

// Eligibility previews what a payout for the seller would contain.
type Eligibility struct {
	SellerID snowflake.ID    `json:"seller_id"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int64           `json:"count"`
	Minimum  decimal.Decimal `json:"minimum"`
	Eligible bool            `json:"eligible"`
}

type Statistics struct {
	TotalCount  int64             `json:"total_count"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ByStatus    []StatusAggregate `json:"by_status"`
}

type Service interface {
	// Create aggregates the seller's unpaid commissions into a pending
	// payout. It fails when the eligible total is below the configured
	// minimum or when nothing is claimable.
	Create(ctx context.Context, req CreatePayoutRequest) (Payout, error)

	// Eligibility reports the claimable total without creating anything.
	Eligibility(ctx context.Context, q ClaimQuery) (Eligibility, error)

	Process(ctx context.Context, id snowflake.ID, req ProcessPayoutRequest) (Payout, error)
	Complete(ctx context.Context, id snowflake.ID, req CompletePayoutRequest) (Payout, error)
	Fail(ctx context.Context, id snowflake.ID, reason string) (Payout, error)
	Cancel(ctx context.Context, id snowflake.ID) (Payout, error)

	GetByID(ctx context.Context, id snowflake.ID) (Payout, error)
	Details(ctx context.Context, id snowflake.ID) (PayoutDetails, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Statistics(ctx context.Context, f ListFilter) (*Statistics, error)
}
