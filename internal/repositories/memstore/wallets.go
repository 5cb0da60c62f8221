package memstore

import (
	"context"
	"sort"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/shopspring/decimal"
)

type walletRepository struct {
	s *Store
}

func (r *walletRepository) GetByHospitalID(_ context.Context, hospitalID string) (*models.Wallet, error) {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	id, ok := st.walletByHospital[hospitalID]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	w := st.wallets[id]
	return &w, nil
}

// GetByHospitalIDForUpdate is a plain read; the store mutex already
// serialises the transaction.
func (r *walletRepository) GetByHospitalIDForUpdate(ctx context.Context, hospitalID string) (*models.Wallet, error) {
	return r.GetByHospitalID(ctx, hospitalID)
}

func (r *walletRepository) Create(_ context.Context, wallet *models.Wallet) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	if _, ok := st.walletByHospital[wallet.HospitalID]; ok {
		return repositories.ErrDuplicateWallet
	}
	now := time.Now()
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now
	st.wallets[wallet.ID] = *wallet
	st.walletByHospital[wallet.HospitalID] = wallet.ID
	return nil
}

func (r *walletRepository) List(_ context.Context) ([]models.Wallet, error) {
	r.s.lock()
	defer r.s.unlock()

	out := make([]models.Wallet, 0, len(r.s.state().wallets))
	for _, w := range r.s.state().wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *walletRepository) ApplyCredit(_ context.Context, walletID string, amount decimal.Decimal) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	w, ok := st.wallets[walletID]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	w.Balance = w.Balance.Add(amount)
	w.TotalEarned = w.TotalEarned.Add(amount)
	w.Version++
	w.UpdatedAt = time.Now()
	st.wallets[walletID] = w
	return nil
}

func (r *walletRepository) ApplyDebit(_ context.Context, walletID string, amount decimal.Decimal) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	w, ok := st.wallets[walletID]
	if !ok || w.Balance.LessThan(amount) {
		return repositories.ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
	w.Version++
	w.UpdatedAt = time.Now()
	st.wallets[walletID] = w
	return nil
}

func (r *walletRepository) CreateTransaction(_ context.Context, tx *models.WalletTransaction) error {
	r.s.lock()
	defer r.s.unlock()

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	st := r.s.state()
	st.transactions = append(st.transactions, *tx)
	return nil
}

func (r *walletRepository) GetTransactionHistory(_ context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, int64, error) {
	r.s.lock()
	defer r.s.unlock()

	var matched []models.WalletTransaction
	txs := r.s.state().transactions
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].WalletID == walletID {
			matched = append(matched, txs[i])
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.WalletTransaction{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *walletRepository) GetTransactionTotals(_ context.Context, walletID string, since time.Time) (*repositories.TransactionTotals, error) {
	r.s.lock()
	defer r.s.unlock()

	totals := &repositories.TransactionTotals{ByType: make(map[models.TransactionType]decimal.Decimal)}
	for _, tx := range r.s.state().transactions {
		if tx.WalletID != walletID || tx.CreatedAt.Before(since) {
			continue
		}
		totals.ByType[tx.Type] = totals.Sum(tx.Type).Add(tx.Amount)
		totals.Count++
	}
	return totals, nil
}

func (r *walletRepository) GetAllTransactions(_ context.Context, limit, offset int) ([]models.WalletTransaction, int64, error) {
	r.s.lock()
	defer r.s.unlock()

	txs := r.s.state().transactions
	total := int64(len(txs))
	if offset >= len(txs) {
		return []models.WalletTransaction{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(txs) {
		end = len(txs)
	}
	out := make([]models.WalletTransaction, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, txs[len(txs)-1-i])
	}
	return out, total, nil
}

func (r *walletRepository) GetLedgerTotals(_ context.Context) (*repositories.LedgerTotals, error) {
	r.s.lock()
	defer r.s.unlock()

	totals := &repositories.LedgerTotals{
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
	}
	for _, w := range r.s.state().wallets {
		totals.Wallets++
		totals.Balance = totals.Balance.Add(w.Balance)
		totals.TotalEarned = totals.TotalEarned.Add(w.TotalEarned)
		totals.TotalWithdrawn = totals.TotalWithdrawn.Add(w.TotalWithdrawn)
	}
	return totals, nil
}
