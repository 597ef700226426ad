package domain

import (
	"context"
	"time"

	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, f ListFilter, p pagination.Pagination) ([]AuditLog, int64, error)
}
