package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/bazaarlabs/settlement/internal/settings/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Setting{}))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB: db, Log: zap.NewNop(), Clock: clk, GenID: node, Repo: repository.Provide(),
	})
	return svc, db, node
}

func TestUpsertAndGet(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key:       domain.KeyGlobalCommissionRate,
		Category:  "commission",
		Value:     "12.5",
		ValueType: domain.ValueTypeNumber,
		Label:     "Global commission rate",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, domain.KeyGlobalCommissionRate)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "12.5", got.Value)

	// second upsert keeps identity, replaces value
	updated, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key:       domain.KeyGlobalCommissionRate,
		Category:  "commission",
		Value:     "15",
		ValueType: domain.ValueTypeNumber,
		Label:     "Global commission rate",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "15", updated.Value)
}

func TestUpsertValidation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Value: "1", ValueType: domain.ValueTypeNumber,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "x", Value: "1", ValueType: "JSON",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidValueType)
}

func TestUpsertRejectsLockedSetting(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Setting{
		ID: node.Generate(), Key: "license.tier", Category: "platform",
		Value: "enterprise", ValueType: domain.ValueTypeString,
		Label: "License tier", IsEditable: false,
	}).Error)

	var stored domain.Setting
	require.NoError(t, db.First(&stored, "key = ?", "license.tier").Error)
	require.False(t, stored.IsEditable)

	_, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "license.tier", Value: "free", ValueType: domain.ValueTypeString,
	})
	assert.ErrorIs(t, err, domain.ErrSettingNotEditable)
}

func TestGetDecimalAndBoolCoercion(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "rate", Category: "commission", Value: "7.25",
		ValueType: domain.ValueTypeNumber, Label: "Rate",
	})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "flag", Category: "commission", Value: "yes",
		ValueType: domain.ValueTypeBoolean, Label: "Flag",
	})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "garbage", Category: "commission", Value: "not-a-number",
		ValueType: domain.ValueTypeString, Label: "Garbage",
	})
	require.NoError(t, err)

	value, ok := svc.GetDecimal(ctx, "rate")
	assert.True(t, ok)
	assert.Equal(t, "7.25", value.String())

	flag, ok := svc.GetBool(ctx, "flag")
	assert.True(t, ok)
	assert.True(t, flag)

	// coercion failures and missing keys report absent, not errors
	_, ok = svc.GetDecimal(ctx, "garbage")
	assert.False(t, ok)
	_, ok = svc.GetBool(ctx, "garbage")
	assert.False(t, ok)
	_, ok = svc.GetDecimal(ctx, "missing")
	assert.False(t, ok)
}

func TestListByCategory(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		_, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
			Key: key, Category: "commission", Value: "1",
			ValueType: domain.ValueTypeNumber, Label: key,
		})
		require.NoError(t, err)
	}
	_, err := svc.Upsert(ctx, domain.UpsertSettingRequest{
		Key: "c", Category: "payout", Value: "1",
		ValueType: domain.ValueTypeNumber, Label: "c",
	})
	require.NoError(t, err)

	commission, err := svc.List(ctx, "commission")
	require.NoError(t, err)
	assert.Len(t, commission, 2)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
