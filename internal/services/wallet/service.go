package wallet

import (
	"context"
	"errors"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type service struct {
	store   repositories.Store
	cache   BalanceCache
	config  Config
	metrics MetricsCollector
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a new wallet ledger. cache may be nil.
func NewService(store repositories.Store, cache BalanceCache, config Config, metrics MetricsCollector, log zerolog.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if config.Currency == "" {
		config.Currency = DefaultCurrency
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = CacheDuration
	}
	if config.RecheckDelay == 0 {
		config.RecheckDelay = RecheckDelay
	}
	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:   store,
		cache:   cache,
		config:  config,
		metrics: metrics,
		log:     log.With().Str("component", "wallet").Logger(),
		now:     time.Now,
	}
}

func (s *service) GetBalance(ctx context.Context, hospitalID string) (*Balance, error) {
	if b, ok := s.cachedBalance(ctx, hospitalID); ok {
		return b, nil
	}

	b := &Balance{
		HospitalID:     hospitalID,
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		Currency:       s.config.Currency,
	}
	w, err := s.store.Wallets().GetByHospitalID(ctx, hospitalID)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		// No wallet yet; report zero without creating one.
		return b, nil
	case err != nil:
		return nil, err
	}

	b.Balance = w.Balance
	b.TotalEarned = w.TotalEarned
	b.TotalWithdrawn = w.TotalWithdrawn
	b.Currency = w.Currency
	s.storeBalance(ctx, b)
	return b, nil
}

func (s *service) ListTransactions(ctx context.Context, hospitalID string, limit, offset int) (*TransactionPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	page := &TransactionPage{Transactions: []models.WalletTransaction{}, Limit: limit, Offset: offset}

	w, err := s.store.Wallets().GetByHospitalID(ctx, hospitalID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return page, nil
	}
	if err != nil {
		return nil, err
	}

	rows, total, err := s.store.Wallets().GetTransactionHistory(ctx, w.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	page.Transactions = rows
	page.Total = total
	return page, nil
}

func (s *service) Statistics(ctx context.Context, hospitalID string) (*Statistics, error) {
	stats := &Statistics{
		HospitalID:       hospitalID,
		CurrentBalance:   decimal.Zero,
		TotalEarned:      decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		ReferralEarnings: decimal.Zero,
		MonthlyEarnings:  decimal.Zero,
	}

	pending, err := s.store.Payouts().SumByStatus(ctx, hospitalID, models.PayoutStatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingPayouts = pending

	w, err := s.store.Wallets().GetByHospitalID(ctx, hospitalID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	stats.CurrentBalance = w.Balance
	stats.TotalEarned = w.TotalEarned
	stats.TotalWithdrawn = w.TotalWithdrawn

	all, err := s.store.Wallets().GetTransactionTotals(ctx, w.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	stats.ReferralEarnings = all.Sum(models.TransactionTypeReferralEarning)
	stats.TransactionCount = all.Count

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	month, err := s.store.Wallets().GetTransactionTotals(ctx, w.ID, monthStart)
	if err != nil {
		return nil, err
	}
	stats.MonthlyEarnings = month.Sum(models.TransactionTypeCredit, models.TransactionTypeReferralEarning)
	return stats, nil
}

// Reconcile replays every wallet's log and reports wallets whose stored
// balance or totals differ from what the rows imply.
func (s *service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	wallets, err := s.store.Wallets().List(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Drift: []WalletDrift{}, CheckedAt: s.now()}
	for _, w := range wallets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		totals, err := s.store.Wallets().GetTransactionTotals(ctx, w.ID, time.Time{})
		if err != nil {
			return nil, err
		}
		report.WalletsChecked++

		expected := totals.Net()
		earned := totals.Sum(models.TransactionTypeCredit, models.TransactionTypeReferralEarning)
		withdrawn := totals.Sum(models.TransactionTypeDebit, models.TransactionTypeWithdrawal)
		if expected.Equal(w.Balance) && earned.Equal(w.TotalEarned) && withdrawn.Equal(w.TotalWithdrawn) {
			continue
		}

		s.log.Error().
			Str("hospital_id", w.HospitalID).
			Str("balance", w.Balance.String()).
			Str("expected", expected.String()).
			Msg("wallet balance does not match its ledger")
		report.Drift = append(report.Drift, WalletDrift{
			HospitalID:             w.HospitalID,
			WalletID:               w.ID,
			Balance:                w.Balance,
			ExpectedBalance:        expected,
			TotalEarned:            w.TotalEarned,
			ExpectedTotalEarned:    earned,
			TotalWithdrawn:         w.TotalWithdrawn,
			ExpectedTotalWithdrawn: withdrawn,
		})
	}
	return report, nil
}
