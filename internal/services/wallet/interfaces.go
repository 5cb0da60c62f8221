package wallet

import (
	"context"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service defines the wallet ledger interface
type Service interface {
	// Postings
	Apply(ctx context.Context, tx repositories.Store, entry Entry) (*models.WalletTransaction, error)
	Credit(ctx context.Context, hospitalID string, amount decimal.Decimal, description, relatedReferralID string) (*models.WalletTransaction, error)
	Debit(ctx context.Context, hospitalID string, amount decimal.Decimal, description string) (*models.WalletTransaction, error)

	// Reads
	GetBalance(ctx context.Context, hospitalID string) (*Balance, error)
	ListTransactions(ctx context.Context, hospitalID string, limit, offset int) (*TransactionPage, error)
	Statistics(ctx context.Context, hospitalID string) (*Statistics, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)

	// Platform-wide views for admins
	Overview(ctx context.Context) (*Overview, error)
	ListAllTransactions(ctx context.Context, limit, offset int) (*LedgerPage, error)

	// Invalidate drops cached balances; call after a transaction that posted commits.
	Invalidate(ctx context.Context, hospitalIDs ...string)
}

// BalanceCache is the subset of cache.CacheService the ledger needs.
type BalanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
