package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/internal/config"
	"github.com/bazaarlabs/settlement/internal/observability/metrics"
	"github.com/bazaarlabs/settlement/internal/payout/domain"
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

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Cfg         config.Config
	Holder      *config.CommissionConfigHolder
	Repo        domain.Repository
	Commissions commissiondomain.Repository
	Settings    settingsdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	cfg         config.Config
	holder      *config.CommissionConfigHolder
	repo        domain.Repository
	commissions commissiondomain.Repository
	settings    settingsdomain.Service
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payout.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		cfg:         p.Cfg,
		holder:      p.Holder,
		repo:        p.Repo,
		commissions: p.Commissions,
		settings:    p.Settings,
		metrics:     p.Metrics,
	}
}

// minimumAmount resolves the payout threshold through the stored setting,
// the environment variable, then the config holder default.
func (s *Service) minimumAmount(ctx context.Context) decimal.Decimal {
	if value, ok := s.settings.GetDecimal(ctx, settingsdomain.KeyPayoutMinimumAmount); ok {
		return value
	}
	if env := strings.TrimSpace(s.cfg.PayoutMinAmount); env != "" {
		value, err := decimal.NewFromString(env)
		if err == nil {
			return value
		}
		s.log.Warn("payout minimum override is not numeric", zap.String("value", env))
	}
	return s.holder.Get().MinimumPayout
}

func (s *Service) Eligibility(ctx context.Context, q domain.ClaimQuery) (domain.Eligibility, error) {
	totals, err := s.repo.EligibleTotals(ctx, s.db, q)
	if err != nil {
		return domain.Eligibility{}, err
	}
	minimum := s.minimumAmount(ctx)
	return domain.Eligibility{
		SellerID: q.SellerID,
		Amount:   totals.Amount,
		Count:    totals.Count,
		Minimum:  minimum,
		Eligible: totals.Count > 0 && totals.Amount.GreaterThanOrEqual(minimum),
	}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePayoutRequest) (domain.Payout, error) {
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return domain.Payout{}, domain.ErrInvalidMethod
	}
	if req.PeriodStart != nil && req.PeriodEnd != nil && req.PeriodEnd.Before(*req.PeriodStart) {
		return domain.Payout{}, domain.ErrInvalidPeriod
	}

	minimum := s.minimumAmount(ctx)
	now := s.clock.Now().UTC()

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	claim := domain.ClaimQuery{
		SellerID:    req.SellerID,
		StoreID:     &req.StoreID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	}

	payout := domain.Payout{
		ID:            s.genID.Generate(),
		SellerID:      req.SellerID,
		StoreID:       req.StoreID,
		Amount:        decimal.Zero,
		Currency:      currency,
		PaymentMethod: method,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		Status:        domain.StatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totals, err := s.repo.EligibleTotals(ctx, tx, claim)
		if err != nil {
			return err
		}
		if totals.Count == 0 {
			return domain.ErrNothingToPay
		}
		if totals.Amount.LessThan(minimum) {
			return fmt.Errorf("%w: total %s is below minimum %s", domain.ErrBelowMinimum, totals.Amount, minimum)
		}

		if err := s.repo.Insert(ctx, tx, &payout); err != nil {
			return err
		}

		claimed, err := s.repo.LinkCommissions(ctx, tx, payout.ID, claim, now)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return domain.ErrNothingToPay
		}

		// The linked set, not the pre-check, is authoritative: a concurrent
		// payout may have claimed rows between the two statements.
		linked, err := s.repo.LinkedTotals(ctx, tx, payout.ID)
		if err != nil {
			return err
		}
		if linked.Amount.LessThan(minimum) {
			return fmt.Errorf("%w: total %s is below minimum %s", domain.ErrBelowMinimum, linked.Amount, minimum)
		}

		payout.Amount = linked.Amount
		payout.CommissionCount = int(linked.Count)
		return s.repo.Update(ctx, tx, &payout)
	})
	if err != nil {
		return domain.Payout{}, err
	}

	s.metrics.RecordPayoutCreated()
	s.log.Info("payout created",
		zap.Int64("payout_id", int64(payout.ID)),
		zap.Int64("seller_id", int64(req.SellerID)),
		zap.String("amount", payout.Amount.String()),
		zap.Int("commissions", payout.CommissionCount),
	)
	return payout, nil
}

func (s *Service) Process(ctx context.Context, id snowflake.ID, req domain.ProcessPayoutRequest) (domain.Payout, error) {
	reference := strings.TrimSpace(req.Reference)
	proof := strings.TrimSpace(req.Proof)

	return s.transition(ctx, id, domain.StatusProcessing, func(payout *domain.Payout, tx *gorm.DB, now time.Time) error {
		if reference != "" {
			payout.PaymentReference = &reference
		}
		if proof != "" {
			payout.PaymentProof = &proof
		}
		return nil
	})
}

func (s *Service) Complete(ctx context.Context, id snowflake.ID, req domain.CompletePayoutRequest) (domain.Payout, error) {
	reference := strings.TrimSpace(req.Reference)
	proof := strings.TrimSpace(req.Proof)

	return s.transition(ctx, id, domain.StatusCompleted, func(payout *domain.Payout, tx *gorm.DB, now time.Time) error {
		payout.ProcessedAt = &now
		if reference != "" {
			payout.PaymentReference = &reference
		}
		if proof != "" {
			payout.PaymentProof = &proof
		}

		marked, err := s.repo.MarkCommissionsPaid(ctx, tx, payout.ID, &payout.PaymentMethod, payout.PaymentReference, now)
		if err != nil {
			return err
		}
		s.log.Info("commissions marked paid",
			zap.Int64("payout_id", int64(payout.ID)),
			zap.Int64("marked", marked),
		)
		return nil
	})
}

func (s *Service) Fail(ctx context.Context, id snowflake.ID, reason string) (domain.Payout, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, domain.StatusFailed, func(payout *domain.Payout, tx *gorm.DB, now time.Time) error {
		note := "payout failed"
		if reason != "" {
			note = "payout failed: " + reason
		}
		if payout.Notes != "" {
			payout.Notes += "\n"
		}
		payout.Notes += note

		released, err := s.repo.UnlinkCommissions(ctx, tx, payout.ID, now)
		if err != nil {
			return err
		}
		s.log.Info("commissions released after payout failure",
			zap.Int64("payout_id", int64(payout.ID)),
			zap.Int64("released", released),
		)
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) (domain.Payout, error) {
	return s.transition(ctx, id, domain.StatusCancelled, func(payout *domain.Payout, tx *gorm.DB, now time.Time) error {
		released, err := s.repo.UnlinkCommissions(ctx, tx, payout.ID, now)
		if err != nil {
			return err
		}
		s.log.Info("commissions released after payout cancellation",
			zap.Int64("payout_id", int64(payout.ID)),
			zap.Int64("released", released),
		)
		return nil
	})
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Payout, error) {
	payout, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payout{}, err
	}
	if payout == nil {
		return domain.Payout{}, domain.ErrNotFound
	}
	return *payout, nil
}

func (s *Service) Details(ctx context.Context, id snowflake.ID) (domain.PayoutDetails, error) {
	payout, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.PayoutDetails{}, err
	}

	linked, err := s.commissions.ListByPayout(ctx, s.db, payout.ID)
	if err != nil {
		return domain.PayoutDetails{}, err
	}
	return domain.PayoutDetails{Payout: payout, Commissions: linked}, nil
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
	return stats, nil
}
