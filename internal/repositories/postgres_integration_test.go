//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medipay/internal/config"
	"medipay/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Run with: DB_NAME=medipay_test go test -tags integration ./internal/repositories/...
var testDB *gorm.DB

func TestMain(m *testing.M) {
	cfg := &config.Config{
		DBHost:            config.GetEnv("DB_HOST", "localhost"),
		DBPort:            config.GetEnv("DB_PORT", "5432"),
		DBUser:            config.GetEnv("DB_USER", "postgres"),
		DBPassword:        config.GetEnv("DB_PASSWORD", "postgres"),
		DBName:            config.GetEnv("DB_NAME", "medipay_test"),
		DBMaxIdleConns:    5,
		DBMaxOpenConns:    20,
		DBConnMaxLifetime: time.Minute,
	}

	db, err := InitDB(cfg, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}
	if err := Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	testDB = db
	code := m.Run()
	_ = Close(db)
	os.Exit(code)
}

func resetTables(t *testing.T) Store {
	t.Helper()
	require.NoError(t, testDB.Exec("TRUNCATE wallet_transactions, wallets, referrals, payout_requests, hospitals").Error)
	return NewStore(testDB)
}

func seedPGWallet(t *testing.T, store Store, hospitalID, balance string) *models.Wallet {
	t.Helper()
	ctx := context.Background()
	w := &models.Wallet{ID: uuid.NewString(), HospitalID: hospitalID, Currency: "INR"}
	require.NoError(t, store.Wallets().Create(ctx, w))
	require.NoError(t, store.Wallets().ApplyCredit(ctx, w.ID, decimal.RequireFromString(balance)))
	got, err := store.Wallets().GetByHospitalID(ctx, hospitalID)
	require.NoError(t, err)
	return got
}

func TestPostgres_ApplyDebitNeverOverdraws(t *testing.T) {
	store := resetTables(t)
	ctx := context.Background()
	w := seedPGWallet(t, store, "h1", "50")

	var (
		wg      sync.WaitGroup
		success int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Wallets().ApplyDebit(ctx, w.ID, decimal.NewFromInt(10))
			if err == nil {
				atomic.AddInt32(&success, 1)
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), success)
	got, err := store.Wallets().GetByHospitalID(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.True(t, got.TotalWithdrawn.Equal(decimal.NewFromInt(50)))
}

func TestPostgres_DuplicateWalletCreate(t *testing.T) {
	store := resetTables(t)
	seedPGWallet(t, store, "h1", "1")

	err := store.Wallets().Create(context.Background(), &models.Wallet{ID: uuid.NewString(), HospitalID: "h1", Currency: "INR"})
	assert.ErrorIs(t, err, ErrDuplicateWallet)
}

func TestPostgres_ClaimSettlementOnce(t *testing.T) {
	store := resetTables(t)
	ctx := context.Background()
	ref := &models.Referral{
		ID:                    uuid.NewString(),
		PatientID:             "pat",
		SourceHospitalID:      "src",
		DestinationHospitalID: "dst",
		Status:                models.ReferralStatusAccepted,
		PaymentOrderID:        "order_" + uuid.NewString(),
		PaymentStatus:         models.PaymentStatusUnpaid,
		Currency:              "INR",
	}
	require.NoError(t, store.Referrals().Create(ctx, ref))

	breakdown := models.PaymentBreakdown{
		PatientAmount:            decimal.NewFromInt(150),
		PlatformFee:              decimal.NewFromInt(40),
		HospitalShare:            decimal.NewFromInt(110),
		SourceHospitalShare:      decimal.NewFromInt(44),
		DestinationHospitalShare: decimal.NewFromInt(66),
	}

	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.Referrals().ClaimSettlement(ctx, ref.ID, fmt.Sprintf("pay_%d", i), breakdown, time.Now())
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	got, err := store.Referrals().GetByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStatusCompleted, got.Status)
	assert.NotEmpty(t, got.PaymentID)
	assert.True(t, got.Breakdown.Balanced())

	count, fees, err := store.Referrals().CompletedTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, fees.Equal(decimal.NewFromInt(40)))
}

func TestPostgres_ResolveOnlyPending(t *testing.T) {
	store := resetTables(t)
	ctx := context.Background()
	w := seedPGWallet(t, store, "h1", "500")
	p := &models.PayoutRequest{
		ID:         uuid.NewString(),
		WalletID:   w.ID,
		HospitalID: "h1",
		Amount:     decimal.NewFromInt(100),
		BankDetails: models.BankDetails{
			AccountHolderName: "City Hospital Trust",
			AccountNumber:     "123456789012",
			IFSCCode:          "HDFC0001234",
			BankName:          "HDFC Bank",
		},
		Status:      models.PayoutStatusPending,
		RequestedAt: time.Now(),
	}
	require.NoError(t, store.Payouts().Create(ctx, p))

	ok, err := store.Payouts().Resolve(ctx, p.ID, models.PayoutStatusApproved, "paid", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Payouts().Resolve(ctx, p.ID, models.PayoutStatusRejected, "late", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Payouts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusApproved, got.Status)
}

func TestPostgres_TransactionRollsBack(t *testing.T) {
	store := resetTables(t)
	ctx := context.Background()
	w := seedPGWallet(t, store, "h1", "20")

	err := store.ExecuteInTransaction(ctx, func(tx Store) error {
		locked, err := tx.Wallets().GetByHospitalIDForUpdate(ctx, "h1")
		if err != nil {
			return err
		}
		if err := tx.Wallets().ApplyDebit(ctx, locked.ID, decimal.NewFromInt(15)); err != nil {
			return err
		}
		return tx.Wallets().ApplyDebit(ctx, locked.ID, decimal.NewFromInt(15))
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := store.Wallets().GetByHospitalID(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, w.Version, got.Version)

	totals, err := store.Wallets().GetLedgerTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Wallets)
	assert.True(t, totals.Balance.Equal(decimal.NewFromInt(20)))
}
