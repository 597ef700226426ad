package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/override/domain"
	"github.com/bazaarlabs/settlement/internal/override/repository"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.SellerCommissionOverride{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB: db, Log: zap.NewNop(), Clock: clk, GenID: node, Repo: repository.Provide(),
	})
	return svc, node, clk
}

func sellerScope(t *testing.T, sellerID snowflake.ID) domain.Scope {
	t.Helper()
	scope, err := domain.SellerScope(sellerID)
	require.NoError(t, err)
	return scope
}

func TestCreateOverrideValidation(t *testing.T) {
	svc, node, _ := setupService(t)
	ctx := context.Background()
	scope := sellerScope(t, node.Generate())

	_, err := svc.Create(ctx, domain.CreateOverrideRequest{
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(5),
		ApprovedBy:     "ops@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrEmptyScope)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: "TIERED",
		CommissionRate: decimal.NewFromInt(5),
		ApprovedBy:     "ops@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(-5),
		ApprovedBy:     "ops@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidApprover)
}

func TestCreateOverrideDuplicateScope(t *testing.T) {
	svc, node, _ := setupService(t)
	ctx := context.Background()
	scope := sellerScope(t, node.Generate())

	_, err := svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(5),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(7),
		ApprovedBy:     "ops@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateScope)
}

func TestCreateOverrideDuplicateCategoryScope(t *testing.T) {
	svc, node, _ := setupService(t)
	ctx := context.Background()

	categoryID := node.Generate()
	scope, err := domain.CategoryScope(categoryID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(8),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleTypeFixed,
		CommissionRate: decimal.NewFromInt(3),
		ApprovedBy:     "ops@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateScope)

	// The same category paired with a seller is a different scope.
	sellerID := node.Generate()
	paired, err := domain.NewScope(&sellerID, &categoryID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          paired,
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(6),
		ApprovedBy:     "ops@example.com",
	})
	assert.NoError(t, err)
}

func TestFindBestInTierMatchesExactScope(t *testing.T) {
	svc, node, clk := setupService(t)
	ctx := context.Background()

	sellerID := node.Generate()
	categoryID := node.Generate()

	sellerOnly, err := svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          sellerScope(t, sellerID),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(8),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	// seller-only tier ignores seller+category rows and vice versa
	found, err := svc.FindBestInTier(ctx, domain.TierQuery{
		SellerID: &sellerID,
		Amount:   decimal.NewFromInt(100),
		At:       clk.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, sellerOnly.ID, found.ID)

	found, err = svc.FindBestInTier(ctx, domain.TierQuery{
		SellerID:   &sellerID,
		CategoryID: &categoryID,
		Amount:     decimal.NewFromInt(100),
		At:         clk.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindBestInTierSkipsInactive(t *testing.T) {
	svc, node, clk := setupService(t)
	ctx := context.Background()
	sellerID := node.Generate()

	created, err := svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          sellerScope(t, sellerID),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(8),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, created.ID, domain.UpdateOverrideRequest{IsActive: &inactive})
	require.NoError(t, err)

	found, err := svc.FindBestInTier(ctx, domain.TierQuery{
		SellerID: &sellerID,
		Amount:   decimal.NewFromInt(100),
		At:       clk.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeleteOverride(t *testing.T) {
	svc, node, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateOverrideRequest{
		Scope:          sellerScope(t, node.Generate()),
		CommissionType: ruledomain.RuleTypeFixed,
		CommissionRate: decimal.NewFromInt(2),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
