package wallet

import (
	"context"
	"errors"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/shopspring/decimal"
)

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	totals, err := s.store.Wallets().GetLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Payouts().ListByStatus(ctx, models.PayoutStatusPending)
	if err != nil {
		return nil, err
	}
	completed, revenue, err := s.store.Referrals().CompletedTotals(ctx)
	if err != nil {
		return nil, err
	}

	o := &Overview{
		Wallets:             totals.Wallets,
		TotalBalance:        totals.Balance,
		TotalEarned:         totals.TotalEarned,
		TotalWithdrawn:      totals.TotalWithdrawn,
		PendingPayoutCount:  len(pending),
		PendingPayoutAmount: decimal.Zero,
		CompletedReferrals:  completed,
		PlatformRevenue:     revenue,
		Currency:            s.config.Currency,
	}
	for _, p := range pending {
		o.PendingPayoutAmount = o.PendingPayoutAmount.Add(p.Amount)
	}
	return o, nil
}

func (s *service) ListAllTransactions(ctx context.Context, limit, offset int) (*LedgerPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.store.Wallets().GetAllTransactions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	page := &LedgerPage{Transactions: make([]LedgerEntry, 0, len(rows)), Total: total, Limit: limit, Offset: offset}
	if len(rows) == 0 {
		return page, nil
	}

	wallets, err := s.store.Wallets().List(ctx)
	if err != nil {
		return nil, err
	}
	owner := make(map[string]string, len(wallets))
	for _, w := range wallets {
		owner[w.ID] = w.HospitalID
	}

	names := make(map[string]string)
	for _, row := range rows {
		hospitalID := owner[row.WalletID]
		name, seen := names[hospitalID]
		if !seen && hospitalID != "" {
			h, err := s.store.Hospitals().GetByID(ctx, hospitalID)
			switch {
			case err == nil:
				name = h.Name
			case !errors.Is(err, repositories.ErrRecordNotFound):
				return nil, err
			}
			names[hospitalID] = name
		}
		page.Transactions = append(page.Transactions, LedgerEntry{
			WalletTransaction: row,
			HospitalID:        hospitalID,
			HospitalName:      name,
		})
	}
	return page, nil
}
