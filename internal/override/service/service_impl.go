package service

import (
	"context"
	"strings"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/override/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bazaarlabs/settlement/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultOverridePriority = 100

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
		log:   p.Log.Named("override.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOverrideRequest) (domain.SellerCommissionOverride, error) {
	if req.Scope.Kind() == 0 {
		return domain.SellerCommissionOverride{}, domain.ErrEmptyScope
	}
	switch req.CommissionType {
	case ruledomain.RuleTypePercentage, ruledomain.RuleTypeFixed:
	default:
		return domain.SellerCommissionOverride{}, domain.ErrInvalidType
	}
	if req.CommissionRate.IsNegative() {
		return domain.SellerCommissionOverride{}, domain.ErrInvalidRate
	}
	approvedBy := strings.TrimSpace(req.ApprovedBy)
	if approvedBy == "" {
		return domain.SellerCommissionOverride{}, domain.ErrInvalidApprover
	}
	if req.MinOrderValue != nil && req.MaxOrderValue != nil &&
		req.MinOrderValue.GreaterThan(*req.MaxOrderValue) {
		return domain.SellerCommissionOverride{}, domain.ErrInvalidBounds
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidFrom.After(*req.ValidUntil) {
		return domain.SellerCommissionOverride{}, domain.ErrInvalidWindow
	}

	priority := defaultOverridePriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	now := s.clock.Now()
	override := domain.SellerCommissionOverride{
		ID:             s.genID.Generate(),
		SellerID:       req.Scope.SellerID(),
		CategoryID:     req.Scope.CategoryID(),
		CommissionType: req.CommissionType,
		CommissionRate: req.CommissionRate,
		MinOrderValue:  req.MinOrderValue,
		MaxOrderValue:  req.MaxOrderValue,
		Priority:       priority,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		IsActive:       true,
		ApprovedBy:     approvedBy,
		ApprovedAt:     now,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The unique index cannot reject a repeated scope when one column is
	// NULL, so the existence check runs in the same transaction as the
	// insert.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.ScopeExists(ctx, tx, override.SellerID, override.CategoryID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateScope
		}
		if err := s.repo.Insert(ctx, tx, &override); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateScope
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.SellerCommissionOverride{}, err
	}

	s.log.Info("seller override created",
		zap.String("override_id", override.ID.String()),
		zap.String("rate", override.CommissionRate.String()),
		zap.String("approved_by", approvedBy),
	)
	return override, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.SellerCommissionOverride, error) {
	override, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SellerCommissionOverride{}, err
	}
	if override == nil {
		return domain.SellerCommissionOverride{}, domain.ErrNotFound
	}
	return *override, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOverridesRequest) ([]domain.SellerCommissionOverride, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		IsActive:   req.IsActive,
		SellerID:   req.SellerID,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	overrides := make([]domain.SellerCommissionOverride, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		overrides = append(overrides, *item)
	}
	return overrides, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateOverrideRequest) (domain.SellerCommissionOverride, error) {
	override, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SellerCommissionOverride{}, err
	}
	if override == nil {
		return domain.SellerCommissionOverride{}, domain.ErrNotFound
	}

	if req.CommissionType != nil {
		switch *req.CommissionType {
		case ruledomain.RuleTypePercentage, ruledomain.RuleTypeFixed:
		default:
			return domain.SellerCommissionOverride{}, domain.ErrInvalidType
		}
		override.CommissionType = *req.CommissionType
	}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() {
			return domain.SellerCommissionOverride{}, domain.ErrInvalidRate
		}
		override.CommissionRate = *req.CommissionRate
	}
	if req.IsActive != nil {
		override.IsActive = *req.IsActive
	}
	if req.ValidFrom != nil {
		override.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		override.ValidUntil = req.ValidUntil
	}
	if req.Notes != nil {
		override.Notes = strings.TrimSpace(*req.Notes)
	}
	if override.ValidFrom != nil && override.ValidUntil != nil &&
		override.ValidFrom.After(*override.ValidUntil) {
		return domain.SellerCommissionOverride{}, domain.ErrInvalidWindow
	}

	override.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, override); err != nil {
		return domain.SellerCommissionOverride{}, err
	}
	return *override, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	override, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if override == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) FindBestInTier(ctx context.Context, q domain.TierQuery) (*domain.SellerCommissionOverride, error) {
	if q.At.IsZero() {
		q.At = s.clock.Now()
	}
	return s.repo.FindBestInTier(ctx, s.db, q)
}
