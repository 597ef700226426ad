package repository

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Setting, error) {
	var setting domain.Setting
	err := db.WithContext(ctx).Raw(
		`SELECT id, key, category, value, value_type, label, description, is_public, is_editable, created_at, updated_at
		 FROM system_settings WHERE key = ?`,
		key,
	).Scan(&setting).Error
	if err != nil {
		return nil, err
	}
	if setting.ID == 0 {
		return nil, nil
	}
	return &setting, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, category string) ([]*domain.Setting, error) {
	var settings []*domain.Setting
	stmt := db.WithContext(ctx).Model(&domain.Setting{})
	if category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	err := stmt.
		Order("category asc, key asc").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, setting *domain.Setting) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value", "value_type", "label", "description", "is_public", "is_editable", "updated_at",
		}),
	}).Create(setting).Error
}
