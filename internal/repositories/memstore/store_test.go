package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWallet(t *testing.T, s *Store, hospitalID string) *models.Wallet {
	t.Helper()
	w := &models.Wallet{ID: "w-" + hospitalID, HospitalID: hospitalID, Currency: "INR"}
	require.NoError(t, s.Wallets().Create(context.Background(), w))
	return w
}

func TestExecuteInTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	w := seedWallet(t, s, "h1")

	boom := errors.New("boom")
	err := s.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		require.NoError(t, tx.Wallets().ApplyCredit(ctx, w.ID, decimal.NewFromInt(50)))
		require.NoError(t, tx.Wallets().CreateTransaction(ctx, &models.WalletTransaction{
			ID: "t1", WalletID: w.ID, Type: models.TransactionTypeCredit, Amount: decimal.NewFromInt(50),
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Wallets().GetByHospitalID(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	_, total, err := s.Wallets().GetTransactionHistory(ctx, w.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestExecuteInTransaction_Nested(t *testing.T) {
	ctx := context.Background()
	s := New()
	w := seedWallet(t, s, "h1")

	err := s.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		return tx.ExecuteInTransaction(ctx, func(inner repositories.Store) error {
			return inner.Wallets().ApplyCredit(ctx, w.ID, decimal.NewFromInt(5))
		})
	})
	require.NoError(t, err)

	got, _ := s.Wallets().GetByHospitalID(ctx, "h1")
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(5)))
}

func TestWallets_DebitNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	w := seedWallet(t, s, "h1")
	require.NoError(t, s.Wallets().ApplyCredit(ctx, w.ID, decimal.NewFromInt(30)))

	err := s.Wallets().ApplyDebit(ctx, w.ID, decimal.NewFromInt(31))
	assert.ErrorIs(t, err, repositories.ErrInsufficientFunds)

	require.NoError(t, s.Wallets().ApplyDebit(ctx, w.ID, decimal.NewFromInt(30)))
	got, _ := s.Wallets().GetByHospitalID(ctx, "h1")
	assert.True(t, got.Balance.IsZero())
	assert.True(t, got.TotalWithdrawn.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, int64(2), got.Version)
}

func TestWallets_DuplicateCreate(t *testing.T) {
	s := New()
	seedWallet(t, s, "h1")
	err := s.Wallets().Create(context.Background(), &models.Wallet{ID: "other", HospitalID: "h1"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateWallet)
}

func TestWallets_HistoryIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	w := seedWallet(t, s, "h1")
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Wallets().CreateTransaction(ctx, &models.WalletTransaction{
			ID: id, WalletID: w.ID, Type: models.TransactionTypeCredit, Amount: decimal.NewFromInt(int64(i + 1)),
		}))
	}

	rows, total, err := s.Wallets().GetTransactionHistory(ctx, w.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)

	rows, _, err = s.Wallets().GetTransactionHistory(ctx, w.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].ID)

	totals, err := s.Wallets().GetTransactionTotals(ctx, w.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Count)
	assert.True(t, totals.Net().Equal(decimal.NewFromInt(6)))
}

func TestReferrals_ClaimSettlementOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Referrals().Create(ctx, &models.Referral{
		ID: "r1", Status: models.ReferralStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}))

	now := time.Now()
	ok, err := s.Referrals().ClaimSettlement(ctx, "r1", "pay_1", models.PaymentBreakdown{}, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Referrals().ClaimSettlement(ctx, "r1", "pay_2", models.PaymentBreakdown{}, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := s.Referrals().GetByID(ctx, "r1")
	assert.Equal(t, "pay_1", got.PaymentID)
	assert.Equal(t, models.ReferralStatusCompleted, got.Status)
}

func TestReferrals_UpdateStatusRequiresExpectedState(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Referrals().Create(ctx, &models.Referral{ID: "r1", Status: models.ReferralStatusRejected}))

	ok, err := s.Referrals().UpdateStatus(ctx, "r1",
		[]models.ReferralStatus{models.ReferralStatusPending}, models.ReferralStatusAccepted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPayouts_ResolveOnlyPending(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Payouts().Create(ctx, &models.PayoutRequest{
		ID: "p1", HospitalID: "h1", Amount: decimal.NewFromInt(40), Status: models.PayoutStatusPending,
	}))

	sum, err := s.Payouts().SumByStatus(ctx, "h1", models.PayoutStatusPending)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(40)))

	ok, err := s.Payouts().Resolve(ctx, "p1", models.PayoutStatusRejected, "dup", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Payouts().Resolve(ctx, "p1", models.PayoutStatusApproved, "", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Payouts().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}
