package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRuleRequest struct {
	Name          string
	Description   string
	Type          RuleType
	Value         decimal.Decimal
	CategoryID    *snowflake.ID
	SellerID      *snowflake.ID
	MinOrderValue *decimal.Decimal
	MaxOrderValue *decimal.Decimal
	Priority      int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
}

type UpdateRuleRequest struct {
	Name          *string
	Description   *string
	Type          *RuleType
	Value         *decimal.Decimal
	Priority      *int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      *bool
	MinOrderValue *decimal.Decimal
	MaxOrderValue *decimal.Decimal
}

type ListRulesRequest struct {
	IsActive   *bool
	CategoryID *snowflake.ID
	SellerID   *snowflake.ID
}

type Service interface {
	Create(ctx context.Context, req CreateRuleRequest) (CommissionRule, error)
	GetByID(ctx context.Context, id snowflake.ID) (CommissionRule, error)
	List(ctx context.Context, req ListRulesRequest) ([]CommissionRule, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRuleRequest) (CommissionRule, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// FindBestMatch returns the highest-priority eligible standard rule for
	// the query, or nil when no rule applies.
	FindBestMatch(ctx context.Context, q CandidateQuery) (*CommissionRule, error)
}

var (
	ErrNotFound      = errors.New("commission_rule_not_found")
	ErrInvalidName   = errors.New("invalid_rule_name")
	ErrInvalidType   = errors.New("invalid_rule_type")
	ErrInvalidValue  = errors.New("invalid_rule_value")
	ErrInvalidBounds = errors.New("invalid_rule_bounds")
	ErrInvalidWindow = errors.New("invalid_rule_validity_window")
)
