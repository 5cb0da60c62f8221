package payout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories/memstore"
	"medipay/internal/services/wallet"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID, message string) error {
	return m.Called(ctx, userID, message).Error(0)
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func bank() models.BankDetails {
	return models.BankDetails{
		AccountHolderName: "City Hospital Trust",
		AccountNumber:     "123456789012",
		IFSCCode:          "HDFC0001234",
		BankName:          "HDFC Bank",
	}
}

type fixture struct {
	svc    Service
	ledger wallet.Service
}

func newFixture(t *testing.T, minimum string, notifier *mockNotifier) *fixture {
	t.Helper()
	store := memstore.New()
	ledger := wallet.NewService(store, nil, wallet.Config{}, nil, zerolog.Nop())
	var svc Service
	if notifier != nil {
		svc = NewService(store, ledger, notifier, Config{Minimum: d(minimum)}, zerolog.Nop())
	} else {
		svc = NewService(store, ledger, nil, Config{Minimum: d(minimum)}, zerolog.Nop())
	}
	return &fixture{svc: svc, ledger: ledger}
}

func (f *fixture) fund(t *testing.T, hospitalID, amount string) {
	t.Helper()
	_, err := f.ledger.Credit(context.Background(), hospitalID, d(amount), "referral earning", "ref-1")
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, hospitalID string) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), hospitalID)
	require.NoError(t, err)
	return b.Balance
}

func TestRequest(t *testing.T) {
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, "h-1", mock.AnythingOfType("string")).Return(nil).Once()

	f := newFixture(t, "100", n)
	f.fund(t, "h-1", "500")

	p, err := f.svc.Request(context.Background(), Request{HospitalID: "h-1", Amount: d("150"), BankDetails: bank()})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, p.Status)
	assert.NotEmpty(t, p.WalletID)
	assert.False(t, p.RequestedAt.IsZero())
	assert.Nil(t, p.ProcessedAt)

	// A request does not touch the balance.
	assert.True(t, f.balance(t, "h-1").Equal(d("500")))
	n.AssertExpectations(t)
}

func TestRequest_Rejections(t *testing.T) {
	f := newFixture(t, "100", nil)
	f.fund(t, "h-1", "500")
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"zero amount", Request{HospitalID: "h-1", Amount: d("0"), BankDetails: bank()}, apperrors.ErrInvalidAmount},
		{"negative amount", Request{HospitalID: "h-1", Amount: d("-5"), BankDetails: bank()}, apperrors.ErrInvalidAmount},
		{"below minimum", Request{HospitalID: "h-1", Amount: d("99.99"), BankDetails: bank()}, apperrors.ErrInvalidAmount},
		{"fractional cents", Request{HospitalID: "h-1", Amount: d("150.001"), BankDetails: bank()}, apperrors.ErrInvalidAmount},
		{"above balance", Request{HospitalID: "h-1", Amount: d("500.01"), BankDetails: bank()}, apperrors.ErrInsufficientBalance},
		{"no wallet", Request{HospitalID: "h-2", Amount: d("150"), BankDetails: bank()}, apperrors.ErrInsufficientBalance},
		{"missing bank details", Request{HospitalID: "h-1", Amount: d("150")}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Request(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("50"), BankDetails: bank()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 100.00")
	_, err = f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("0"), BankDetails: bank()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be greater than zero")

	page, err := f.svc.ListForHospital(ctx, "h-1", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", nil)
	f.fund(t, "h-1", "500")

	p, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("200"), BankDetails: bank()})
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, p.ID, "paid via NEFT")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusApproved, approved.Status)
	assert.Equal(t, "paid via NEFT", approved.AdminNotes)
	assert.NotNil(t, approved.ProcessedAt)

	b, err := f.ledger.GetBalance(ctx, "h-1")
	require.NoError(t, err)
	assert.True(t, b.Balance.Equal(d("300")))
	assert.True(t, b.TotalWithdrawn.Equal(d("200")))

	page, err := f.ledger.ListTransactions(ctx, "h-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	row := page.Transactions[0]
	assert.Equal(t, models.TransactionTypeWithdrawal, row.Type)
	assert.True(t, row.BalanceAfter.Equal(d("300")))
	require.NotNil(t, row.RelatedPayoutID)
	assert.Equal(t, p.ID, *row.RelatedPayoutID)

	_, err = f.svc.Approve(ctx, p.ID, "again")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = f.svc.Reject(ctx, p.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.True(t, f.balance(t, "h-1").Equal(d("300")))
}

func TestApprove_OverRequestedBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10", nil)
	f.fund(t, "h-1", "44")

	first, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("40"), BankDetails: bank()})
	require.NoError(t, err)
	second, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("40"), BankDetails: bank()})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, first.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, second.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	still, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, still.Status)
	assert.Nil(t, still.ProcessedAt)
	assert.True(t, f.balance(t, "h-1").Equal(d("4")))

	rejected, err := f.svc.Reject(ctx, second.ID, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusRejected, rejected.Status)
	assert.True(t, f.balance(t, "h-1").Equal(d("4")))
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, "h-1", mock.AnythingOfType("string")).Return(errors.New("push gateway down"))

	f := newFixture(t, "100", n)
	f.fund(t, "h-1", "500")

	p, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("100"), BankDetails: bank()})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, p.ID, "account name mismatch")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusRejected, rejected.Status)
	assert.Equal(t, "account name mismatch", rejected.AdminNotes)
	assert.True(t, f.balance(t, "h-1").Equal(d("500")))
	n.AssertCalled(t, "Notify", mock.Anything, "h-1", "Payout request rejected: account name mismatch")

	_, err = f.svc.Approve(ctx, p.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = f.svc.Reject(ctx, "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.Approve(ctx, "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", nil)
	f.fund(t, "h-1", "500")
	f.fund(t, "h-2", "300")

	a, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("100"), BankDetails: bank()})
	require.NoError(t, err)
	b, err := f.svc.Request(ctx, Request{HospitalID: "h-2", Amount: d("250"), BankDetails: bank()})
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, a.ID, "")
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].Payout.ID)
	assert.True(t, pending[0].CurrentBalance.Equal(d("300")))

	raw, err := json.Marshal(pending[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"account_number":"****9012"`)
	assert.NotContains(t, string(raw), "123456789012")
	assert.Contains(t, string(raw), `"current_balance"`)
}

func TestListForHospital(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", nil)
	f.fund(t, "h-1", "1000")

	for i := 0; i < 3; i++ {
		_, err := f.svc.Request(ctx, Request{HospitalID: "h-1", Amount: d("100"), BankDetails: bank()})
		require.NoError(t, err)
	}

	page, err := f.svc.ListForHospital(ctx, "h-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Payouts, 2)

	page, err = f.svc.ListForHospital(ctx, "h-1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, wallet.DefaultPageSize, page.Limit)
	assert.Len(t, page.Payouts, 1)
}
