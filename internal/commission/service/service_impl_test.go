package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/commission/domain"
	commissionrepo "github.com/bazaarlabs/settlement/internal/commission/repository"
	"github.com/bazaarlabs/settlement/internal/config"
	orderdomain "github.com/bazaarlabs/settlement/internal/order/domain"
	orderrepo "github.com/bazaarlabs/settlement/internal/order/repository"
	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	overriderepo "github.com/bazaarlabs/settlement/internal/override/repository"
	overrideservice "github.com/bazaarlabs/settlement/internal/override/service"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	rulerepo "github.com/bazaarlabs/settlement/internal/rule/repository"
	ruleservice "github.com/bazaarlabs/settlement/internal/rule/service"
	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	settingsrepo "github.com/bazaarlabs/settlement/internal/settings/repository"
	settingsservice "github.com/bazaarlabs/settlement/internal/settings/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       *Service
	db        *gorm.DB
	node      *snowflake.Node
	clk       *clock.FakeClock
	rules     ruledomain.Service
	overrides overridedomain.Service
	settings  settingsdomain.Service
}

func setupFixture(t *testing.T) *fixture {
	return setupFixtureWithHolder(t, config.DefaultCommissionConfig(), config.Config{})
}

func setupFixtureWithHolder(t *testing.T, holderCfg config.CommissionConfig, cfg config.Config) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&orderdomain.Category{},
		&orderdomain.Store{},
		&orderdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.PaymentTransaction{},
		&ruledomain.CommissionRule{},
		&overridedomain.SellerCommissionOverride{},
		&settingsdomain.Setting{},
		&domain.Commission{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	rules := ruleservice.New(ruleservice.Params{
		DB: db, Log: log, Clock: clk, GenID: node, Repo: rulerepo.Provide(),
	})
	overrides := overrideservice.New(overrideservice.Params{
		DB: db, Log: log, Clock: clk, GenID: node, Repo: overriderepo.Provide(),
	})
	settings := settingsservice.New(settingsservice.Params{
		DB: db, Log: log, Clock: clk, GenID: node, Repo: settingsrepo.Provide(),
	})

	holder := config.NewStaticCommissionHolder(holderCfg)
	svc := New(Params{
		DB:        db,
		Log:       log,
		Clock:     clk,
		GenID:     node,
		Cfg:       cfg,
		Holder:    holder,
		Repo:      commissionrepo.Provide(),
		Orders:    orderrepo.Provide(),
		Overrides: overrides,
		Rules:     rules,
		Settings:  settings,
	}).(*Service)

	return &fixture{
		svc:       svc,
		db:        db,
		node:      node,
		clk:       clk,
		rules:     rules,
		overrides: overrides,
		settings:  settings,
	}
}

func mustScope(t *testing.T, sellerID, categoryID *snowflake.ID) overridedomain.Scope {
	t.Helper()
	scope, err := overridedomain.NewScope(sellerID, categoryID)
	require.NoError(t, err)
	return scope
}

func TestCalculateDefaultPercentage(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	amount, match, err := f.svc.Calculate(ctx, decimal.NewFromInt(200), nil)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, domain.RuleSourceDefault, match.Source)
	assert.Equal(t, "20", amount.String())
}

func TestCalculatePercentageCaps(t *testing.T) {
	holderCfg := config.DefaultCommissionConfig()
	holderCfg.MinAmount = decimal.NewFromInt(5)
	holderCfg.MaxAmount = decimal.NewFromInt(15)
	f := setupFixtureWithHolder(t, holderCfg, config.Config{})
	ctx := context.Background()

	// 10% of 10 is 1, lifted to the 5 floor
	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(10), nil)
	require.NoError(t, err)
	assert.Equal(t, "5", amount.String())

	// 10% of 1000 is 100, capped at 15
	amount, _, err = f.svc.Calculate(ctx, decimal.NewFromInt(1000), nil)
	require.NoError(t, err)
	assert.Equal(t, "15", amount.String())
}

func TestCalculateZeroMaxMeansNoCap(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(100000), nil)
	require.NoError(t, err)
	assert.Equal(t, "10000", amount.String())
}

func TestCalculateFixedWithFee(t *testing.T) {
	holderCfg := config.DefaultCommissionConfig()
	holderCfg.FixedFee = decimal.NewFromFloat(0.30)
	f := setupFixtureWithHolder(t, holderCfg, config.Config{})
	ctx := context.Background()

	match := &domain.RuleMatch{
		Source: domain.RuleSourceRule,
		Type:   ruledomain.RuleTypeFixed,
		Value:  decimal.NewFromFloat(2.50),
	}
	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(40), match)
	require.NoError(t, err)
	assert.Equal(t, "2.8", amount.String())
}

func TestCalculateFixedHonorsCaps(t *testing.T) {
	holderCfg := config.DefaultCommissionConfig()
	holderCfg.MaxAmount = decimal.NewFromInt(25)
	f := setupFixtureWithHolder(t, holderCfg, config.Config{})
	ctx := context.Background()

	match := &domain.RuleMatch{
		Source: domain.RuleSourceRule,
		Type:   ruledomain.RuleTypeFixed,
		Value:  decimal.NewFromInt(500),
	}
	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(40), match)
	require.NoError(t, err)
	assert.Equal(t, "25", amount.String())
}

func TestCalculateIgnoresNegativeFixedFee(t *testing.T) {
	holderCfg := config.DefaultCommissionConfig()
	holderCfg.FixedFee = decimal.NewFromInt(-2)
	f := setupFixtureWithHolder(t, holderCfg, config.Config{})
	ctx := context.Background()

	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(200), nil)
	require.NoError(t, err)
	assert.Equal(t, "20", amount.String())
}

func TestCalculateNeverNegative(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	match := &domain.RuleMatch{
		Source: domain.RuleSourceRule,
		Type:   ruledomain.RuleTypeFixed,
		Value:  decimal.NewFromInt(-5),
	}
	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(40), match)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestCalculateUnknownRuleType(t *testing.T) {
	f := setupFixture(t)

	match := &domain.RuleMatch{
		Source: domain.RuleSourceRule,
		Type:   ruledomain.RuleType("TIERED"),
		Value:  decimal.NewFromInt(3),
	}
	_, _, err := f.svc.Calculate(context.Background(), decimal.NewFromInt(40), match)
	assert.ErrorIs(t, err, domain.ErrUnknownRuleType)
}

func TestDefaultRateFallbackChain(t *testing.T) {
	holderCfg := config.DefaultCommissionConfig()
	holderCfg.DefaultRate = decimal.NewFromInt(7)
	f := setupFixtureWithHolder(t, holderCfg, config.Config{GlobalCommissionRate: "12"})
	ctx := context.Background()

	// No stored setting, so the environment tier wins over the holder.
	amount, _, err := f.svc.Calculate(ctx, decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, "12", amount.String())

	_, err = f.settings.Upsert(ctx, settingsdomain.UpsertSettingRequest{
		Key:       settingsdomain.KeyGlobalCommissionRate,
		Category:  "commission",
		Value:     "15",
		ValueType: settingsdomain.ValueTypeNumber,
		Label:     "Global commission rate",
	})
	require.NoError(t, err)

	amount, _, err = f.svc.Calculate(ctx, decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, "15", amount.String())
}

func TestResolvePrefersMostSpecificOverride(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sellerID := f.node.Generate()
	categoryID := f.node.Generate()

	_, err := f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, &sellerID, nil),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(8),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	both, err := f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, &sellerID, &categoryID),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(5),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, sellerID, &categoryID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, domain.RuleSourceOverride, match.Source)
	require.NotNil(t, match.RuleID)
	assert.Equal(t, both.ID, *match.RuleID)
	assert.Equal(t, "5", match.Value.String())
}

func TestResolveSellerOverrideBeatsCategoryOverride(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sellerID := f.node.Generate()
	categoryID := f.node.Generate()

	sellerOnly, err := f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, &sellerID, nil),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(8),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	_, err = f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, nil, &categoryID),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(3),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, sellerID, &categoryID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NotNil(t, match)
	require.NotNil(t, match.RuleID)
	assert.Equal(t, sellerOnly.ID, *match.RuleID)
}

func TestResolveFallsThroughToRules(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sellerID := f.node.Generate()
	categoryID := f.node.Generate()

	rule, err := f.rules.Create(ctx, ruledomain.CreateRuleRequest{
		Name:       "electronics",
		Type:       ruledomain.RuleTypePercentage,
		Value:      decimal.NewFromInt(6),
		CategoryID: &categoryID,
		Priority:   10,
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, sellerID, &categoryID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, domain.RuleSourceRule, match.Source)
	require.NotNil(t, match.RuleID)
	assert.Equal(t, rule.ID, *match.RuleID)
}

func TestResolveReturnsNilWhenNothingMatches(t *testing.T) {
	f := setupFixture(t)

	match, err := f.svc.Resolve(context.Background(), f.node.Generate(), nil, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestResolveSkipsIneligibleOverride(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sellerID := f.node.Generate()
	min := decimal.NewFromInt(500)

	_, err := f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, &sellerID, nil),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(2),
		MinOrderValue:  &min,
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, sellerID, nil, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestResolveOverrideBeatsHigherPriorityRule(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sellerID := f.node.Generate()
	categoryID := f.node.Generate()

	override, err := f.overrides.Create(ctx, overridedomain.CreateOverrideRequest{
		Scope:          mustScope(t, &sellerID, &categoryID),
		CommissionType: ruledomain.RuleTypePercentage,
		CommissionRate: decimal.NewFromInt(4),
		ApprovedBy:     "ops@example.com",
	})
	require.NoError(t, err)

	_, err = f.rules.Create(ctx, ruledomain.CreateRuleRequest{
		Name:       "aggressive category rate",
		Type:       ruledomain.RuleTypePercentage,
		Value:      decimal.NewFromInt(25),
		CategoryID: &categoryID,
		Priority:   1000,
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, sellerID, &categoryID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, domain.RuleSourceOverride, match.Source)
	require.NotNil(t, match.RuleID)
	assert.Equal(t, override.ID, *match.RuleID)
}

func TestResolveOrderValueBoundsAreInclusive(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	categoryID := f.node.Generate()
	min := decimal.NewFromInt(100)

	rule, err := f.rules.Create(ctx, ruledomain.CreateRuleRequest{
		Name:          "bulk orders",
		Type:          ruledomain.RuleTypePercentage,
		Value:         decimal.NewFromInt(6),
		CategoryID:    &categoryID,
		MinOrderValue: &min,
	})
	require.NoError(t, err)

	match, err := f.svc.Resolve(ctx, f.node.Generate(), &categoryID, decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	assert.Nil(t, match)

	match, err = f.svc.Resolve(ctx, f.node.Generate(), &categoryID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	require.NotNil(t, match)
	require.NotNil(t, match.RuleID)
	assert.Equal(t, rule.ID, *match.RuleID)
}
