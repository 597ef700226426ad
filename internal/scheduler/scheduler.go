package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	payoutdomain "github.com/bazaarlabs/settlement/internal/payout/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	PayoutSvc payoutdomain.Service
	Config    Config `optional:"true"`
}

// Scheduler periodically sweeps sellers whose unpaid commissions have
// accumulated past the payout minimum and opens a pending payout for
// each of them. Sellers below the minimum are skipped, not failed.
type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	payoutSvc payoutdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.PayoutSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		payoutSvc: p.PayoutSvc,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("payout sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()
	return s.SweepPayoutsJob(ctx)
}

type claimTarget struct {
	SellerID snowflake.ID
	StoreID  snowflake.ID
}

// SweepPayoutsJob creates payouts for every seller store currently
// holding claimable commissions. Per-target eligibility is re-checked
// inside the payout service transaction, so a target dipping below the
// minimum between the scan and the create is a normal skip.
func (s *Scheduler) SweepPayoutsJob(ctx context.Context) error {
	targets, err := s.storesWithClaimable(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	start := s.clock.Now()
	periodEnd := start.UTC()
	created, skipped, failed := 0, 0, 0
	for _, target := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := s.payoutSvc.Create(ctx, payoutdomain.CreatePayoutRequest{
			SellerID:      target.SellerID,
			StoreID:       target.StoreID,
			PeriodEnd:     &periodEnd,
			PaymentMethod: s.cfg.PaymentMethod,
			Notes:         "scheduled sweep",
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, payoutdomain.ErrBelowMinimum), errors.Is(err, payoutdomain.ErrNothingToPay):
			skipped++
		default:
			failed++
			s.log.Warn("sweep payout create failed",
				zap.String("seller_id", target.SellerID.String()),
				zap.String("store_id", target.StoreID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Info("payout sweep finished",
		zap.Int("targets", len(targets)),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Duration("took", s.clock.Now().Sub(start)),
	)
	if failed > 0 {
		return errors.New("payout_sweep_partial_failure")
	}
	return nil
}

func (s *Scheduler) storesWithClaimable(ctx context.Context) ([]claimTarget, error) {
	var targets []claimTarget
	err := s.db.WithContext(ctx).
		Model(&commissiondomain.Commission{}).
		Distinct("seller_id", "store_id").
		Where("payout_id IS NULL AND paid_out = ?", false).
		Where("status = ?", commissiondomain.StatusConfirmed).
		Order("seller_id").
		Limit(s.cfg.BatchSize).
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}
