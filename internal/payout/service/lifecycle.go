package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bazaarlabs/settlement/internal/payout/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transition moves a payout to the next lifecycle status inside one
// transaction. The payout row is re-read under the transaction so two
// concurrent transitions cannot both observe the same starting status and
// both commit. apply runs after the guard and may touch linked commissions.
func (s *Service) transition(
	ctx context.Context,
	id snowflake.ID,
	next domain.Status,
	apply func(payout *domain.Payout, tx *gorm.DB, now time.Time) error,
) (domain.Payout, error) {
	now := s.clock.Now().UTC()

	var result domain.Payout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payout, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payout == nil {
			return domain.ErrNotFound
		}

		if !payout.Status.CanTransitionTo(next) {
			s.log.Warn("rejected payout status transition",
				zap.Int64("payout_id", int64(id)),
				zap.String("from", string(payout.Status)),
				zap.String("to", string(next)),
			)
			return fmt.Errorf("%w: payout is %s", domain.ErrInvalidTransition, payout.Status)
		}

		payout.Status = next
		payout.UpdatedAt = now
		if err := apply(payout, tx, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, payout); err != nil {
			return err
		}

		result = *payout
		return nil
	})
	if err != nil {
		return domain.Payout{}, err
	}

	s.metrics.RecordPayoutTransition(string(next))
	s.log.Info("payout status changed",
		zap.Int64("payout_id", int64(id)),
		zap.String("status", string(next)),
	)
	return result, nil
}
