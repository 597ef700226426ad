package repository

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/override/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, override *domain.SellerCommissionOverride) error {
	return db.WithContext(ctx).Create(override).Error
}

func (r *repo) ScopeExists(ctx context.Context, db *gorm.DB, sellerID, categoryID *snowflake.ID) (bool, error) {
	stmt := db.WithContext(ctx).Model(&domain.SellerCommissionOverride{})
	if sellerID != nil {
		stmt = stmt.Where("seller_id = ?", *sellerID)
	} else {
		stmt = stmt.Where("seller_id IS NULL")
	}
	if categoryID != nil {
		stmt = stmt.Where("category_id = ?", *categoryID)
	} else {
		stmt = stmt.Where("category_id IS NULL")
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SellerCommissionOverride, error) {
	var override domain.SellerCommissionOverride
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&override).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

func (r *repo) FindBestInTier(ctx context.Context, db *gorm.DB, q domain.TierQuery) (*domain.SellerCommissionOverride, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.SellerCommissionOverride{}).
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", q.At).
		Where("valid_until IS NULL OR valid_until >= ?", q.At).
		Where("min_order_value IS NULL OR min_order_value <= ?", q.Amount).
		Where("max_order_value IS NULL OR max_order_value >= ?", q.Amount)

	if q.SellerID != nil {
		stmt = stmt.Where("seller_id = ?", *q.SellerID)
	} else {
		stmt = stmt.Where("seller_id IS NULL")
	}
	if q.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *q.CategoryID)
	} else {
		stmt = stmt.Where("category_id IS NULL")
	}

	var override domain.SellerCommissionOverride
	err := stmt.
		Order("priority desc, created_at desc").
		Take(&override).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.SellerCommissionOverride, error) {
	var overrides []*domain.SellerCommissionOverride
	stmt := db.WithContext(ctx).Model(&domain.SellerCommissionOverride{})
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.SellerID != nil {
		stmt = stmt.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	err := stmt.
		Order("created_at desc").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, override *domain.SellerCommissionOverride) error {
	return db.WithContext(ctx).Save(override).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.SellerCommissionOverride{}).Error
}
