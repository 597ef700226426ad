package service

import (
	"context"
	"strings"

	"github.com/bazaarlabs/settlement/internal/commission/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fallbackDecimal resolves one numeric knob through the three-tier chain:
// stored setting, then environment variable, then the config holder value.
// Bad values at a tier fall through to the next, never fail the calculation.
func (s *Service) fallbackDecimal(ctx context.Context, key, env string, def decimal.Decimal) decimal.Decimal {
	if value, ok := s.settings.GetDecimal(ctx, key); ok {
		return value
	}
	if env = strings.TrimSpace(env); env != "" {
		value, err := decimal.NewFromString(env)
		if err == nil {
			return value
		}
		s.log.Warn("environment override is not numeric",
			zap.String("key", key),
			zap.String("value", env),
		)
	}
	return def
}

func (s *Service) fallbackBool(ctx context.Context, key, env string, def bool) bool {
	if value, ok := s.settings.GetBool(ctx, key); ok {
		return value
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	case "":
	default:
		s.log.Warn("environment override is not boolean",
			zap.String("key", key),
			zap.String("value", env),
		)
	}
	return def
}

func (s *Service) defaultRate(ctx context.Context) decimal.Decimal {
	return s.fallbackDecimal(ctx,
		settingsdomain.KeyGlobalCommissionRate, s.cfg.GlobalCommissionRate, s.holder.Get().DefaultRate)
}

func (s *Service) minCommission(ctx context.Context) decimal.Decimal {
	return s.fallbackDecimal(ctx,
		settingsdomain.KeyCommissionMinAmount, s.cfg.CommissionMinAmount, s.holder.Get().MinAmount)
}

func (s *Service) maxCommission(ctx context.Context) decimal.Decimal {
	return s.fallbackDecimal(ctx,
		settingsdomain.KeyCommissionMaxAmount, s.cfg.CommissionMaxAmount, s.holder.Get().MaxAmount)
}

func (s *Service) fixedFee(ctx context.Context) decimal.Decimal {
	return s.fallbackDecimal(ctx,
		settingsdomain.KeyCommissionFixedFee, s.cfg.CommissionFixedFee, s.holder.Get().FixedFee)
}

func (s *Service) appliesToShipping(ctx context.Context) bool {
	return s.fallbackBool(ctx,
		settingsdomain.KeyCommissionOnShipping, s.cfg.CommissionOnShipping, s.holder.Get().AppliesToShipping)
}

// Calculate turns a resolved rate into a money amount. A nil match means
// the platform default percentage applies; the returned match is always
// non-nil so callers can snapshot the rate that was actually used.
//
// The result is clamped to the min and max caps before the fixed fee is
// added, whatever the rule type. A zero max cap disables the upper clamp.
func (s *Service) Calculate(ctx context.Context, base decimal.Decimal, match *domain.RuleMatch) (decimal.Decimal, *domain.RuleMatch, error) {
	if match == nil {
		match = &domain.RuleMatch{
			Source: domain.RuleSourceDefault,
			Type:   ruledomain.RuleTypePercentage,
			Value:  s.defaultRate(ctx),
		}
	}

	var amount decimal.Decimal
	switch match.Type {
	case ruledomain.RuleTypePercentage:
		amount = base.Mul(match.Value).Div(decimal.NewFromInt(100))
	case ruledomain.RuleTypeFixed:
		amount = match.Value
	default:
		return decimal.Zero, match, domain.ErrUnknownRuleType
	}

	if min := s.minCommission(ctx); min.IsPositive() && amount.LessThan(min) {
		amount = min
	}
	if max := s.maxCommission(ctx); max.IsPositive() && amount.GreaterThan(max) {
		amount = max
	}

	if fee := s.fixedFee(ctx); fee.IsPositive() {
		amount = amount.Add(fee)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), match, nil
}
