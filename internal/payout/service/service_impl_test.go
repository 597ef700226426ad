package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bazaarlabs/settlement/internal/clock"
	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	commissionrepo "github.com/bazaarlabs/settlement/internal/commission/repository"
	"github.com/bazaarlabs/settlement/internal/config"
	"github.com/bazaarlabs/settlement/internal/payout/domain"
	payoutrepo "github.com/bazaarlabs/settlement/internal/payout/repository"
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
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
	clk  *clock.FakeClock
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&commissiondomain.Commission{},
		&settingsdomain.Setting{},
		&domain.Payout{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	settings := settingsservice.New(settingsservice.Params{
		DB: db, Log: log, Clock: clk, GenID: node, Repo: settingsrepo.Provide(),
	})

	svc := New(Params{
		DB:          db,
		Log:         log,
		Clock:       clk,
		GenID:       node,
		Cfg:         config.Config{},
		Holder:      config.NewStaticCommissionHolder(config.DefaultCommissionConfig()),
		Repo:        payoutrepo.Provide(),
		Commissions: commissionrepo.Provide(),
		Settings:    settings,
	})

	return &fixture{svc: svc, db: db, node: node, clk: clk}
}

func seedCommission(t *testing.T, f *fixture, sellerID, storeID snowflake.ID, amount int64, status commissiondomain.Status) commissiondomain.Commission {
	t.Helper()
	row := commissiondomain.Commission{
		ID:               f.node.Generate(),
		TransactionID:    f.node.Generate(),
		OrderID:          f.node.Generate(),
		OrderItemID:      f.node.Generate(),
		SellerID:         sellerID,
		StoreID:          storeID,
		RuleSource:       commissiondomain.RuleSourceDefault,
		RuleType:         "PERCENTAGE",
		RuleValue:        decimal.NewFromInt(10),
		OrderAmount:      decimal.NewFromInt(amount * 10),
		CommissionAmount: decimal.NewFromInt(amount),
		Currency:         "USD",
		Status:           status,
		CreatedAt:        f.clk.Now(),
		UpdatedAt:        f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&row).Error)
	return row
}

func createReq(sellerID, storeID snowflake.ID) domain.CreatePayoutRequest {
	return domain.CreatePayoutRequest{
		SellerID:      sellerID,
		StoreID:       storeID,
		PaymentMethod: "bank_transfer",
	}
}

func linkedCommissions(t *testing.T, f *fixture, payoutID snowflake.ID) []commissiondomain.Commission {
	t.Helper()
	var rows []commissiondomain.Commission
	require.NoError(t, f.db.Where("payout_id = ?", payoutID).Find(&rows).Error)
	return rows
}

func TestCreatePayoutClaimsEligibleCommissions(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 30, commissiondomain.StatusConfirmed)
	seedCommission(t, f, sellerID, storeID, 40, commissiondomain.StatusConfirmed)
	pending := seedCommission(t, f, sellerID, storeID, 100, commissiondomain.StatusPending)
	cancelled := seedCommission(t, f, sellerID, storeID, 100, commissiondomain.StatusCancelled)

	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, payout.Status)
	assert.Equal(t, "70", payout.Amount.String())
	assert.Equal(t, 2, payout.CommissionCount)
	assert.Equal(t, "USD", payout.Currency)
	assert.Equal(t, "bank_transfer", payout.PaymentMethod)

	linked := linkedCommissions(t, f, payout.ID)
	require.Len(t, linked, 2)
	for _, row := range linked {
		assert.NotEqual(t, pending.ID, row.ID)
		assert.NotEqual(t, cancelled.ID, row.ID)
	}
}

func TestCreatePayoutScopedToStore(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()
	otherStore := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	foreign := seedCommission(t, f, sellerID, otherStore, 80, commissiondomain.StatusConfirmed)

	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	assert.Equal(t, "60", payout.Amount.String())

	linked := linkedCommissions(t, f, payout.ID)
	require.Len(t, linked, 1)
	assert.NotEqual(t, foreign.ID, linked[0].ID)
}

func TestCreatePayoutHonorsPeriodWindow(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	inside := seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)

	old := seedCommission(t, f, sellerID, storeID, 80, commissiondomain.StatusConfirmed)
	past := f.clk.Now().AddDate(0, -2, 0)
	require.NoError(t, f.db.Model(&commissiondomain.Commission{}).
		Where("id = ?", old.ID).
		Update("created_at", past).Error)

	start := f.clk.Now().AddDate(0, -1, 0)
	end := f.clk.Now()
	req := createReq(sellerID, storeID)
	req.PeriodStart = &start
	req.PeriodEnd = &end

	payout, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "60", payout.Amount.String())

	linked := linkedCommissions(t, f, payout.ID)
	require.Len(t, linked, 1)
	assert.Equal(t, inside.ID, linked[0].ID)
}

func TestCreatePayoutRejectsInvertedPeriod(t *testing.T) {
	f := setupFixture(t)
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	start := f.clk.Now()
	end := start.AddDate(0, -1, 0)
	req := createReq(sellerID, storeID)
	req.PeriodStart = &start
	req.PeriodEnd = &end

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestCreatePayoutRequiresMethod(t *testing.T) {
	f := setupFixture(t)
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)

	req := createReq(sellerID, storeID)
	req.PaymentMethod = "  "
	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestCreatePayoutBelowMinimum(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 20, commissiondomain.StatusConfirmed)

	_, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)

	var count int64
	require.NoError(t, f.db.Model(&domain.Payout{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePayoutNothingToPay(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Create(context.Background(), createReq(f.node.Generate(), f.node.Generate()))
	assert.ErrorIs(t, err, domain.ErrNothingToPay)
}

func TestCreatePayoutTwiceClaimsNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 80, commissiondomain.StatusConfirmed)

	_, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, createReq(sellerID, storeID))
	assert.ErrorIs(t, err, domain.ErrNothingToPay)
}

func TestPayoutMinimumFromSettings(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	require.NoError(t, f.db.Create(&settingsdomain.Setting{
		ID: f.node.Generate(), Key: settingsdomain.KeyPayoutMinimumAmount,
		Category: "payout", Value: "10", ValueType: settingsdomain.ValueTypeNumber,
		Label: "Minimum payout", IsEditable: true,
		CreatedAt: f.clk.Now(), UpdatedAt: f.clk.Now(),
	}).Error)

	seedCommission(t, f, sellerID, storeID, 20, commissiondomain.StatusConfirmed)

	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	assert.Equal(t, "20", payout.Amount.String())
}

func TestEligibilityPreview(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 30, commissiondomain.StatusConfirmed)
	seedCommission(t, f, sellerID, storeID, 99, commissiondomain.StatusPending)

	elig, err := f.svc.Eligibility(ctx, domain.ClaimQuery{SellerID: sellerID})
	require.NoError(t, err)
	assert.Equal(t, "30", elig.Amount.String())
	assert.EqualValues(t, 1, elig.Count)
	assert.Equal(t, "50", elig.Minimum.String())
	assert.False(t, elig.Eligible)

	seedCommission(t, f, sellerID, storeID, 30, commissiondomain.StatusConfirmed)

	elig, err = f.svc.Eligibility(ctx, domain.ClaimQuery{SellerID: sellerID})
	require.NoError(t, err)
	assert.True(t, elig.Eligible)
}

func TestCompleteMarksCommissionsPaid(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, payout.ID, domain.ProcessPayoutRequest{})
	require.NoError(t, err)

	done, err := f.svc.Complete(ctx, payout.ID, domain.CompletePayoutRequest{
		Reference: "TRX-998877",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)
	require.NotNil(t, done.PaymentReference)
	assert.Equal(t, "TRX-998877", *done.PaymentReference)

	linked := linkedCommissions(t, f, payout.ID)
	require.Len(t, linked, 1)
	row := linked[0]
	assert.Equal(t, commissiondomain.StatusPaid, row.Status)
	assert.True(t, row.PaidOut)
	require.NotNil(t, row.PayoutMethod)
	assert.Equal(t, "bank_transfer", *row.PayoutMethod)
	require.NotNil(t, row.PayoutReference)
	assert.Equal(t, "TRX-998877", *row.PayoutReference)
}

func TestCompleteDirectlyFromPending(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	done, err := f.svc.Complete(ctx, payout.ID, domain.CompletePayoutRequest{Reference: "TRX-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)

	linked := linkedCommissions(t, f, payout.ID)
	require.Len(t, linked, 1)
	assert.Equal(t, commissiondomain.StatusPaid, linked[0].Status)
}

func TestProcessStoresTransferEvidence(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	processing, err := f.svc.Process(ctx, payout.ID, domain.ProcessPayoutRequest{
		Reference: "TRX-42",
		Proof:     "https://bank.example/receipts/42",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, processing.Status)
	require.NotNil(t, processing.PaymentReference)
	assert.Equal(t, "TRX-42", *processing.PaymentReference)
	require.NotNil(t, processing.PaymentProof)
}

func TestFailReleasesCommissions(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, payout.ID, domain.ProcessPayoutRequest{})
	require.NoError(t, err)

	failed, err := f.svc.Fail(ctx, payout.ID, "provider rejected the account")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	assert.Contains(t, failed.Notes, "provider rejected the account")

	assert.Empty(t, linkedCommissions(t, f, payout.ID))

	// released rows are claimable again
	elig, err := f.svc.Eligibility(ctx, domain.ClaimQuery{SellerID: sellerID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, elig.Count)
}

func TestCancelReleasesCommissions(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Empty(t, linkedCommissions(t, f, payout.ID))
}

func TestCancelWhileProcessing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, payout.ID, domain.ProcessPayoutRequest{})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Empty(t, linkedCommissions(t, f, payout.ID))
}

func TestTerminalPayoutsAreImmutable(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	completed, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, completed.ID, domain.CompletePayoutRequest{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, completed.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Process(ctx, completed.ID, domain.ProcessPayoutRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	seedCommission(t, f, sellerID, storeID, 70, commissiondomain.StatusConfirmed)
	failed, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)
	_, err = f.svc.Fail(ctx, failed.ID, "transfer bounced")
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, failed.ID, domain.CompletePayoutRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransitionUnknownPayout(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Process(context.Background(), f.node.Generate(), domain.ProcessPayoutRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetailsIncludesLinkedCommissions(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sellerID := f.node.Generate()
	storeID := f.node.Generate()

	seedCommission(t, f, sellerID, storeID, 60, commissiondomain.StatusConfirmed)
	payout, err := f.svc.Create(ctx, createReq(sellerID, storeID))
	require.NoError(t, err)

	details, err := f.svc.Details(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, payout.ID, details.Payout.ID)
	assert.Len(t, details.Commissions, 1)
}
