package wallet

import (
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds ledger settings.
type Config struct {
	Currency     string
	CacheTTL     time.Duration
	RecheckDelay time.Duration
}

// Entry is one posting to apply.
type Entry struct {
	HospitalID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	ReferralID  string
	PayoutID    string
}

// Balance is the cached view of a wallet.
type Balance struct {
	HospitalID     string          `json:"hospital_id"`
	Balance        decimal.Decimal `json:"balance"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	Currency       string          `json:"currency"`
}

// TransactionPage is a newest-first slice of a wallet's log.
type TransactionPage struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	Total        int64                      `json:"total"`
	Limit        int                        `json:"limit"`
	Offset       int                        `json:"offset"`
}

// Statistics summarises a wallet for the hospital dashboard.
type Statistics struct {
	HospitalID       string          `json:"hospital_id"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
	PendingPayouts   decimal.Decimal `json:"pending_payouts"`
	ReferralEarnings decimal.Decimal `json:"referral_earnings"`
	MonthlyEarnings  decimal.Decimal `json:"monthly_earnings"`
	TransactionCount int64           `json:"transaction_count"`
}

// Overview sums every wallet, the payout queue and the platform's fee revenue.
type Overview struct {
	Wallets             int64           `json:"wallets"`
	TotalBalance        decimal.Decimal `json:"total_balance"`
	TotalEarned         decimal.Decimal `json:"total_earned"`
	TotalWithdrawn      decimal.Decimal `json:"total_withdrawn"`
	PendingPayoutCount  int             `json:"pending_payout_count"`
	PendingPayoutAmount decimal.Decimal `json:"pending_payout_amount"`
	CompletedReferrals  int64           `json:"completed_referrals"`
	PlatformRevenue     decimal.Decimal `json:"platform_revenue"`
	Currency            string          `json:"currency"`
}

// LedgerEntry is a transaction row with the hospital that owns the wallet.
type LedgerEntry struct {
	models.WalletTransaction
	HospitalID   string `json:"hospital_id"`
	HospitalName string `json:"hospital_name"`
}

// LedgerPage is a newest-first slice of every wallet's log.
type LedgerPage struct {
	Transactions []LedgerEntry `json:"transactions"`
	Total        int64         `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// WalletDrift is a wallet whose stored totals disagree with its log.
type WalletDrift struct {
	HospitalID             string          `json:"hospital_id"`
	WalletID               string          `json:"wallet_id"`
	Balance                decimal.Decimal `json:"balance"`
	ExpectedBalance        decimal.Decimal `json:"expected_balance"`
	TotalEarned            decimal.Decimal `json:"total_earned"`
	ExpectedTotalEarned    decimal.Decimal `json:"expected_total_earned"`
	TotalWithdrawn         decimal.Decimal `json:"total_withdrawn"`
	ExpectedTotalWithdrawn decimal.Decimal `json:"expected_total_withdrawn"`
}

// ReconcileReport is the result of replaying every wallet's log.
type ReconcileReport struct {
	WalletsChecked int           `json:"wallets_checked"`
	Drift          []WalletDrift `json:"drift"`
	CheckedAt      time.Time     `json:"checked_at"`
}

// OK reports whether every wallet matched its log.
func (r *ReconcileReport) OK() bool {
	return len(r.Drift) == 0
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordBalanceChange(hospitalID string, oldBalance, newBalance decimal.Decimal)
}
