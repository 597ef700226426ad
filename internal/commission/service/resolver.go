package service

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/commission/domain"
	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Resolve walks the resolution tiers in strict order: seller+category
// override, seller-only override, category-only override, then standard
// rules. The first tier with an eligible entry wins outright; a later tier
// is never consulted once an earlier one matched, no matter its priority.
func (s *Service) Resolve(ctx context.Context, sellerID snowflake.ID, categoryID *snowflake.ID, amount decimal.Decimal) (*domain.RuleMatch, error) {
	now := s.clock.Now().UTC()

	tiers := make([]overridedomain.TierQuery, 0, 3)
	if categoryID != nil {
		tiers = append(tiers, overridedomain.TierQuery{
			SellerID:   &sellerID,
			CategoryID: categoryID,
			Amount:     amount,
			At:         now,
		})
	}
	tiers = append(tiers, overridedomain.TierQuery{
		SellerID: &sellerID,
		Amount:   amount,
		At:       now,
	})
	if categoryID != nil {
		tiers = append(tiers, overridedomain.TierQuery{
			CategoryID: categoryID,
			Amount:     amount,
			At:         now,
		})
	}

	for _, tier := range tiers {
		override, err := s.overrides.FindBestInTier(ctx, tier)
		if err != nil {
			return nil, err
		}
		if override != nil {
			id := override.ID
			return &domain.RuleMatch{
				RuleID: &id,
				Source: domain.RuleSourceOverride,
				Type:   override.CommissionType,
				Value:  override.CommissionRate,
			}, nil
		}
	}

	rule, err := s.rules.FindBestMatch(ctx, ruledomain.CandidateQuery{
		SellerID:   sellerID,
		CategoryID: categoryID,
		Amount:     amount,
		At:         now,
	})
	if err != nil {
		return nil, err
	}
	if rule != nil {
		id := rule.ID
		return &domain.RuleMatch{
			RuleID: &id,
			Source: domain.RuleSourceRule,
			Type:   rule.Type,
			Value:  rule.Value,
		}, nil
	}

	return nil, nil
}
