package service

import (
	"context"
	"strings"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("rule.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRuleRequest) (domain.CommissionRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CommissionRule{}, domain.ErrInvalidName
	}
	if err := validateType(req.Type); err != nil {
		return domain.CommissionRule{}, err
	}
	if req.Value.IsNegative() {
		return domain.CommissionRule{}, domain.ErrInvalidValue
	}
	if req.MinOrderValue != nil && req.MaxOrderValue != nil &&
		req.MinOrderValue.GreaterThan(*req.MaxOrderValue) {
		return domain.CommissionRule{}, domain.ErrInvalidBounds
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidFrom.After(*req.ValidUntil) {
		return domain.CommissionRule{}, domain.ErrInvalidWindow
	}

	now := s.clock.Now()
	rule := domain.CommissionRule{
		ID:            s.genID.Generate(),
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Type:          req.Type,
		Value:         req.Value,
		CategoryID:    req.CategoryID,
		SellerID:      req.SellerID,
		MinOrderValue: req.MinOrderValue,
		MaxOrderValue: req.MaxOrderValue,
		Priority:      req.Priority,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		return domain.CommissionRule{}, err
	}

	s.log.Info("commission rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("type", string(rule.Type)),
		zap.String("value", rule.Value.String()),
	)
	return rule, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.CommissionRule, error) {
	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CommissionRule{}, err
	}
	if rule == nil {
		return domain.CommissionRule{}, domain.ErrNotFound
	}
	return *rule, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRulesRequest) ([]domain.CommissionRule, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		IsActive:   req.IsActive,
		CategoryID: req.CategoryID,
		SellerID:   req.SellerID,
	})
	if err != nil {
		return nil, err
	}

	rules := make([]domain.CommissionRule, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rules = append(rules, *item)
	}
	return rules, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRuleRequest) (domain.CommissionRule, error) {
	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CommissionRule{}, err
	}
	if rule == nil {
		return domain.CommissionRule{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.CommissionRule{}, domain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.Description != nil {
		rule.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		if err := validateType(*req.Type); err != nil {
			return domain.CommissionRule{}, err
		}
		rule.Type = *req.Type
	}
	if req.Value != nil {
		if req.Value.IsNegative() {
			return domain.CommissionRule{}, domain.ErrInvalidValue
		}
		rule.Value = *req.Value
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.ValidFrom != nil {
		rule.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		rule.ValidUntil = req.ValidUntil
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.MinOrderValue != nil {
		rule.MinOrderValue = req.MinOrderValue
	}
	if req.MaxOrderValue != nil {
		rule.MaxOrderValue = req.MaxOrderValue
	}
	if rule.MinOrderValue != nil && rule.MaxOrderValue != nil &&
		rule.MinOrderValue.GreaterThan(*rule.MaxOrderValue) {
		return domain.CommissionRule{}, domain.ErrInvalidBounds
	}
	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidFrom.After(*rule.ValidUntil) {
		return domain.CommissionRule{}, domain.ErrInvalidWindow
	}

	rule.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return domain.CommissionRule{}, err
	}
	return *rule, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) FindBestMatch(ctx context.Context, q domain.CandidateQuery) (*domain.CommissionRule, error) {
	if q.At.IsZero() {
		q.At = s.clock.Now()
	}
	return s.repo.FindBestCandidate(ctx, s.db, q)
}

func validateType(t domain.RuleType) error {
	switch t {
	case domain.RuleTypePercentage, domain.RuleTypeFixed:
		return nil
	default:
		return domain.ErrInvalidType
	}
}
