package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Setting, error)
	List(ctx context.Context, db *gorm.DB, category string) ([]*Setting, error)
	Upsert(ctx context.Context, db *gorm.DB, setting *Setting) error
}
