package repository

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) FindBestCandidate(ctx context.Context, db *gorm.DB, q domain.CandidateQuery) (*domain.CommissionRule, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.CommissionRule{}).
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", q.At).
		Where("valid_until IS NULL OR valid_until >= ?", q.At).
		Where("min_order_value IS NULL OR min_order_value <= ?", q.Amount).
		Where("max_order_value IS NULL OR max_order_value >= ?", q.Amount)

	if q.CategoryID != nil {
		stmt = stmt.Where(
			"seller_id = ? OR category_id = ? OR (seller_id IS NULL AND category_id IS NULL)",
			q.SellerID, *q.CategoryID,
		)
	} else {
		stmt = stmt.Where(
			"seller_id = ? OR (seller_id IS NULL AND category_id IS NULL)",
			q.SellerID,
		)
	}

	var rule domain.CommissionRule
	err := stmt.
		Order("priority desc, created_at desc").
		Take(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.CommissionRule, error) {
	var rules []*domain.CommissionRule
	stmt := db.WithContext(ctx).Model(&domain.CommissionRule{})
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SellerID != nil {
		stmt = stmt.Where("seller_id = ?", *filter.SellerID)
	}
	err := stmt.
		Order("priority desc, created_at desc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.CommissionRule{}).Error
}
