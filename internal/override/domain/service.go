package domain

import (
	"context"
	"errors"
	"time"

	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateOverrideRequest struct {
	Scope          Scope
	CommissionType ruledomain.RuleType
	CommissionRate decimal.Decimal
	MinOrderValue  *decimal.Decimal
	MaxOrderValue  *decimal.Decimal
	Priority       *int
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	ApprovedBy     string
	Notes          string
}

type UpdateOverrideRequest struct {
	CommissionType *ruledomain.RuleType
	CommissionRate *decimal.Decimal
	IsActive       *bool
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Notes          *string
}

type ListOverridesRequest struct {
	IsActive   *bool
	SellerID   *snowflake.ID
	CategoryID *snowflake.ID
}

type Service interface {
	Create(ctx context.Context, req CreateOverrideRequest) (SellerCommissionOverride, error)
	GetByID(ctx context.Context, id snowflake.ID) (SellerCommissionOverride, error)
	List(ctx context.Context, req ListOverridesRequest) ([]SellerCommissionOverride, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateOverrideRequest) (SellerCommissionOverride, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// FindBestInTier returns the highest-priority eligible override whose
	// scope columns match the query exactly, or nil.
	FindBestInTier(ctx context.Context, q TierQuery) (*SellerCommissionOverride, error)
}

var (
	ErrNotFound        = errors.New("override_not_found")
	ErrDuplicateScope  = errors.New("override_scope_conflict")
	ErrInvalidType     = errors.New("invalid_override_type")
	ErrInvalidRate     = errors.New("invalid_override_rate")
	ErrInvalidApprover = errors.New("invalid_override_approver")
	ErrInvalidBounds   = errors.New("invalid_override_bounds")
	ErrInvalidWindow   = errors.New("invalid_override_validity_window")
)
