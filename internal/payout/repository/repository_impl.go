package repository

import (
	"context"
	"time"

	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/internal/payout/domain"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Only CONFIRMED commissions may be disbursed; PENDING rows are still
// subject to order cancellation.
var claimableStatus = commissiondomain.StatusConfirmed

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payout *domain.Payout) error {
	return db.WithContext(ctx).Create(payout).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payout, error) {
	var payout domain.Payout
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payout *domain.Payout) error {
	return db.WithContext(ctx).Save(payout).Error
}

func applyFilter(stmt *gorm.DB, f domain.ListFilter) *gorm.DB {
	if f.SellerID != nil {
		stmt = stmt.Where("seller_id = ?", *f.SellerID)
	}
	if f.Status != nil {
		stmt = stmt.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		stmt = stmt.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		stmt = stmt.Where("created_at <= ?", *f.To)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter, p pagination.Pagination) ([]domain.Payout, int64, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Payout{}), f)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Payout
	err := p.Apply(stmt).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) SummarizeByStatus(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]domain.StatusAggregate, error) {
	var aggs []domain.StatusAggregate
	err := applyFilter(db.WithContext(ctx).Model(&domain.Payout{}), f).
		Select("status, count(*) as count, coalesce(sum(amount), 0) as amount").
		Group("status").
		Find(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}

func applyClaimQuery(stmt *gorm.DB, q domain.ClaimQuery) *gorm.DB {
	stmt = stmt.
		Where("seller_id = ?", q.SellerID).
		Where("payout_id IS NULL").
		Where("paid_out = ?", false).
		Where("status = ?", claimableStatus)
	if q.StoreID != nil {
		stmt = stmt.Where("store_id = ?", *q.StoreID)
	}
	if q.PeriodStart != nil {
		stmt = stmt.Where("created_at >= ?", *q.PeriodStart)
	}
	if q.PeriodEnd != nil {
		stmt = stmt.Where("created_at <= ?", *q.PeriodEnd)
	}
	return stmt
}

func (r *repo) LinkCommissions(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, q domain.ClaimQuery, at time.Time) (int64, error) {
	res := applyClaimQuery(db.WithContext(ctx).Model(&commissiondomain.Commission{}), q).
		Updates(map[string]any{
			"payout_id":  payoutID,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) EligibleTotals(ctx context.Context, db *gorm.DB, q domain.ClaimQuery) (domain.LinkedTotals, error) {
	var totals domain.LinkedTotals
	err := applyClaimQuery(db.WithContext(ctx).Model(&commissiondomain.Commission{}), q).
		Select("count(*) as count, coalesce(sum(commission_amount), 0) as amount").
		Take(&totals).Error
	return totals, err
}

func (r *repo) LinkedTotals(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) (domain.LinkedTotals, error) {
	var totals domain.LinkedTotals
	err := db.WithContext(ctx).
		Model(&commissiondomain.Commission{}).
		Select("count(*) as count, coalesce(sum(commission_amount), 0) as amount").
		Where("payout_id = ?", payoutID).
		Take(&totals).Error
	return totals, err
}

func (r *repo) UnlinkCommissions(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&commissiondomain.Commission{}).
		Where("payout_id = ?", payoutID).
		Updates(map[string]any{
			"payout_id":  nil,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) MarkCommissionsPaid(ctx context.Context, db *gorm.DB, payoutID snowflake.ID, method, reference *string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&commissiondomain.Commission{}).
		Where("payout_id = ?", payoutID).
		Updates(map[string]any{
			"status":           commissiondomain.StatusPaid,
			"paid_out":         true,
			"paid_out_at":      at,
			"payout_method":    method,
			"payout_reference": reference,
			"updated_at":       at,
		})
	return res.RowsAffected, res.Error
}
