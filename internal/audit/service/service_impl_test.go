package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bazaarlabs/settlement/internal/audit/domain"
	"github.com/bazaarlabs/settlement/internal/audit/repository"
	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB: db, Log: zap.NewNop(), Clock: clk, GenID: node, Repo: repository.Provide(),
	})
	return svc, db, clk
}

func TestRecordRedactsSensitiveMetadata(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	actor := "ops@example.com"
	target := "912831"
	require.NoError(t, svc.Record(ctx, domain.Entry{
		ActorType:  domain.ActorTypeAdmin,
		ActorID:    &actor,
		Action:     "payout.completed",
		TargetType: "payout",
		TargetID:   &target,
		Metadata: map[string]any{
			"payout_reference": "TRX-45219912",
			"method":           "bank_transfer",
		},
	}))

	var row domain.AuditLog
	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, "payout.completed", row.Action)
	assert.Equal(t, domain.ActorTypeAdmin, row.ActorType)
	assert.Equal(t, "****9912", row.Metadata["payout_reference"])
	assert.Equal(t, "bank_transfer", row.Metadata["method"])
}

func TestRecordDefaultsActorToSystem(t *testing.T) {
	svc, db, _ := setupService(t)

	require.NoError(t, svc.Record(context.Background(), domain.Entry{
		Action: "payout.created",
	}))

	var row domain.AuditLog
	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, domain.ActorTypeSystem, row.ActorType)
	assert.Equal(t, "unknown", row.TargetType)
}

func TestRecordRejectsEmptyAction(t *testing.T) {
	svc, _, _ := setupService(t)

	err := svc.Record(context.Background(), domain.Entry{Action: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListFiltersAndValidatesRange(t *testing.T) {
	svc, _, clk := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, domain.Entry{Action: "rule.created", TargetType: "commission_rule"}))
	require.NoError(t, svc.Record(ctx, domain.Entry{Action: "payout.created", TargetType: "payout"}))

	resp, err := svc.List(ctx, domain.ListRequest{
		Filter: domain.ListFilter{Action: "payout.created"},
		Page:   pagination.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "payout.created", resp.Data[0].Action)
	assert.EqualValues(t, 1, resp.Pagination.Total)

	start := clk.Now()
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, domain.ListRequest{
		Filter: domain.ListFilter{StartAt: &start, EndAt: &end},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
