package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type UpsertSettingRequest struct {
	Key         string
	Category    string
	Value       string
	ValueType   ValueType
	Label       string
	Description string
	IsPublic    bool
}

type Service interface {
	Get(ctx context.Context, key string) (Setting, error)

	// GetDecimal and GetBool coerce a stored value. The bool result reports
	// whether a usable value was found; lookup or coercion failures are
	// reported as absent, never as errors, so callers can fall through to
	// their next fallback tier.
	GetDecimal(ctx context.Context, key string) (decimal.Decimal, bool)
	GetBool(ctx context.Context, key string) (bool, bool)

	List(ctx context.Context, category string) ([]Setting, error)
	Upsert(ctx context.Context, req UpsertSettingRequest) (Setting, error)
}

var (
	ErrNotFound           = errors.New("setting_not_found")
	ErrInvalidKey         = errors.New("invalid_setting_key")
	ErrInvalidValueType   = errors.New("invalid_setting_value_type")
	ErrSettingNotEditable = errors.New("setting_not_editable")
)
