package repositories

import (
	"context"
	"fmt"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) GetByHospitalID(ctx context.Context, hospitalID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("hospital_id = ?", hospitalID).First(&wallet).Error; err != nil {
		if notFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByHospitalIDForUpdate(ctx context.Context, hospitalID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hospital_id = ?", hospitalID).
		First(&wallet).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hospital_id"}}, DoNothing: true}).
		Create(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateWallet
	}
	return nil
}

func (r *walletRepository) List(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := r.db.WithContext(ctx).Order("created_at").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (r *walletRepository) ApplyCredit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to credit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *walletRepository) ApplyDebit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Updates(map[string]interface{}{
			"balance":         gorm.Expr("balance - ?", amount),
			"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to debit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]models.WalletTransaction, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("wallet_id = ?", walletID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return rows, total, nil
}

func (r *walletRepository) GetTransactionTotals(ctx context.Context, walletID string, since time.Time) (*TransactionTotals, error) {
	var rows []struct {
		Type  models.TransactionType
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("wallet_id = ? AND created_at >= ?", walletID, since).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction totals: %w", err)
	}

	totals := &TransactionTotals{ByType: make(map[models.TransactionType]decimal.Decimal, len(rows))}
	for _, row := range rows {
		totals.ByType[row.Type] = row.Total
		totals.Count += row.Count
	}
	return totals, nil
}

func (r *walletRepository) GetAllTransactions(ctx context.Context, limit, offset int) ([]models.WalletTransaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, total, nil
}

func (r *walletRepository) GetLedgerTotals(ctx context.Context) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Select("COUNT(*) AS wallets, " +
			"COALESCE(SUM(balance), 0) AS balance, " +
			"COALESCE(SUM(total_earned), 0) AS total_earned, " +
			"COALESCE(SUM(total_withdrawn), 0) AS total_withdrawn").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger totals: %w", err)
	}
	return &totals, nil
}
