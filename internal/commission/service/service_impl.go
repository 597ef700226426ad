package service

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/internal/config"
	"github.com/bazaarlabs/settlement/internal/observability/metrics"
	orderdomain "github.com/bazaarlabs/settlement/internal/order/domain"
	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Cfg       config.Config
	Holder    *config.CommissionConfigHolder
	Repo      domain.Repository
	Orders    orderdomain.Repository
	Overrides overridedomain.Service
	Rules     ruledomain.Service
	Settings  settingsdomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	cfg       config.Config
	holder    *config.CommissionConfigHolder
	repo      domain.Repository
	orders    orderdomain.Repository
	overrides overridedomain.Service
	rules     ruledomain.Service
	settings  settingsdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("commission.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		cfg:       p.Cfg,
		holder:    p.Holder,
		repo:      p.Repo,
		orders:    p.Orders,
		overrides: p.Overrides,
		rules:     p.Rules,
		settings:  p.Settings,
		metrics:   p.Metrics,
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Commission, error) {
	c, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCommissionNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()
	rows, total, err := s.repo.List(ctx, s.db, req.Filter, page)
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{
		Data:       rows,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) SellerSummary(ctx context.Context, sellerID snowflake.ID) (*domain.SellerSummary, error) {
	aggs, err := s.repo.SummarizeByStatus(ctx, s.db, domain.ListFilter{SellerID: &sellerID})
	if err != nil {
		return nil, err
	}

	summary := &domain.SellerSummary{
		SellerID:      sellerID,
		TotalEarned:   decimal.Zero,
		PendingAmount: decimal.Zero,
		PaidAmount:    decimal.Zero,
	}
	for _, agg := range aggs {
		switch agg.Status {
		case domain.StatusCancelled:
			// cancelled rows count toward nothing
			continue
		case domain.StatusPending, domain.StatusConfirmed:
			summary.PendingAmount = summary.PendingAmount.Add(agg.Amount)
		case domain.StatusPaid:
			summary.PaidAmount = summary.PaidAmount.Add(agg.Amount)
		}
		summary.TotalEarned = summary.TotalEarned.Add(agg.Amount)
		summary.TotalCount += agg.Count
	}
	return summary, nil
}

func (s *Service) Statistics(ctx context.Context, f domain.ListFilter) (*domain.Statistics, error) {
	aggs, err := s.repo.SummarizeByStatus(ctx, s.db, f)
	if err != nil {
		return nil, err
	}

	stats := &domain.Statistics{
		TotalAmount: decimal.Zero,
		ByStatus:    aggs,
	}
	for _, agg := range aggs {
		stats.TotalCount += agg.Count
		stats.TotalAmount = stats.TotalAmount.Add(agg.Amount)
	}

	paidOut := true
	paidAggs, err := s.repo.SummarizeByStatus(ctx, s.db, domain.ListFilter{
		SellerID: f.SellerID,
		From:     f.From,
		To:       f.To,
		PaidOut:  &paidOut,
	})
	if err != nil {
		return nil, err
	}
	for _, agg := range paidAggs {
		stats.PaidOutCount += agg.Count
	}
	return stats, nil
}

func (s *Service) TopSellers(ctx context.Context, f domain.ListFilter, limit int) ([]domain.SellerAggregate, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopSellers(ctx, s.db, f, limit)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Commission, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Recent(ctx, s.db, limit)
}

func (s *Service) CancelForOrder(ctx context.Context, orderID snowflake.ID) (int64, error) {
	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.UpdateForOrder(ctx, tx, orderID, domain.StatusCancelled, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordCommissionsCancelled(updated)
	s.log.Info("commissions cancelled for order",
		zap.Int64("order_id", int64(orderID)),
		zap.Int64("updated", updated),
	)
	return updated, nil
}
