package repository

import (
	"context"
	"time"

	"github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *domain.Commission) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "order_item_id"}},
			DoNothing: true,
		}).
		Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Commission, error) {
	var c domain.Commission
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func applyFilter(stmt *gorm.DB, f domain.ListFilter) *gorm.DB {
	if f.SellerID != nil {
		stmt = stmt.Where("seller_id = ?", *f.SellerID)
	}
	if f.StoreID != nil {
		stmt = stmt.Where("store_id = ?", *f.StoreID)
	}
	if f.OrderID != nil {
		stmt = stmt.Where("order_id = ?", *f.OrderID)
	}
	if f.Status != nil {
		stmt = stmt.Where("status = ?", *f.Status)
	}
	if f.PaidOut != nil {
		stmt = stmt.Where("paid_out = ?", *f.PaidOut)
	}
	if f.PayoutID != nil {
		stmt = stmt.Where("payout_id = ?", *f.PayoutID)
	}
	if f.From != nil {
		stmt = stmt.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		stmt = stmt.Where("created_at <= ?", *f.To)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter, p pagination.Pagination) ([]domain.Commission, int64, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Commission{}), f)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Commission
	err := p.Apply(stmt).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) ListByPayout(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) ([]domain.Commission, error) {
	var rows []domain.Commission
	err := db.WithContext(ctx).
		Where("payout_id = ?", payoutID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SummarizeByStatus(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]domain.StatusAggregate, error) {
	var aggs []domain.StatusAggregate
	err := applyFilter(db.WithContext(ctx).Model(&domain.Commission{}), f).
		Select("status, count(*) as count, coalesce(sum(commission_amount), 0) as amount").
		Group("status").
		Find(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}

func (r *repo) TopSellers(ctx context.Context, db *gorm.DB, f domain.ListFilter, limit int) ([]domain.SellerAggregate, error) {
	var aggs []domain.SellerAggregate
	err := applyFilter(db.WithContext(ctx).Model(&domain.Commission{}), f).
		Select("seller_id, count(*) as count, coalesce(sum(commission_amount), 0) as total_amount").
		Group("seller_id").
		Order("total_amount desc").
		Limit(limit).
		Find(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}

func (r *repo) Recent(ctx context.Context, db *gorm.DB, limit int) ([]domain.Commission, error) {
	var rows []domain.Commission
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpdateForOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID, status domain.Status, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Commission{}).
		Where("order_id = ?", orderID).
		Where("status IN ?", []domain.Status{domain.StatusPending, domain.StatusConfirmed}).
		Updates(map[string]any{
			"status":     status,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}
