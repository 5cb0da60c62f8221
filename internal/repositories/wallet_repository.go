package repositories

import (
	"context"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet and ledger row persistence.
type WalletRepository interface {
	GetByHospitalID(ctx context.Context, hospitalID string) (*models.Wallet, error)
	// GetByHospitalIDForUpdate locks the wallet row until the surrounding transaction ends.
	GetByHospitalIDForUpdate(ctx context.Context, hospitalID string) (*models.Wallet, error)
	Create(ctx context.Context, wallet *models.Wallet) error
	List(ctx context.Context) ([]models.Wallet, error)

	// ApplyCredit adds amount to balance and total earned.
	ApplyCredit(ctx context.Context, walletID string, amount decimal.Decimal) error
	// ApplyDebit subtracts amount from balance and adds it to total withdrawn,
	// only if the balance covers it, otherwise ErrInsufficientFunds.
	ApplyDebit(ctx context.Context, walletID string, amount decimal.Decimal) error

	CreateTransaction(ctx context.Context, tx *models.WalletTransaction) error
	GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, int64, error)
	GetTransactionTotals(ctx context.Context, walletID string, since time.Time) (*TransactionTotals, error)

	// GetAllTransactions pages through every wallet's rows, newest first.
	GetAllTransactions(ctx context.Context, limit, offset int) ([]models.WalletTransaction, int64, error)
	GetLedgerTotals(ctx context.Context) (*LedgerTotals, error)
}

// LedgerTotals sums every wallet on the platform.
type LedgerTotals struct {
	Wallets        int64
	Balance        decimal.Decimal
	TotalEarned    decimal.Decimal
	TotalWithdrawn decimal.Decimal
}

// TransactionTotals aggregates ledger rows per type.
type TransactionTotals struct {
	ByType map[models.TransactionType]decimal.Decimal
	Count  int64
}

// Sum returns the total for t, zero if there were no rows of that type.
func (t *TransactionTotals) Sum(types ...models.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, typ := range types {
		if v, ok := t.ByType[typ]; ok {
			total = total.Add(v)
		}
	}
	return total
}

// Net is credits minus debits, the balance the rows imply.
func (t *TransactionTotals) Net() decimal.Decimal {
	credits := t.Sum(models.TransactionTypeCredit, models.TransactionTypeReferralEarning)
	debits := t.Sum(models.TransactionTypeDebit, models.TransactionTypeWithdrawal)
	return credits.Sub(debits)
}
