package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Apply posts one entry inside tx. It locks the wallet row, applies the
// balance delta and appends the ledger row; both land or neither does.
// Credits create the wallet on first use. Debits and withdrawals fail with
// ErrInsufficientBalance rather than take the balance below zero.
func (s *service) Apply(ctx context.Context, tx repositories.Store, e Entry) (*models.WalletTransaction, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(string(e.Type), time.Since(start))
	}()

	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, e.Amount)
	}
	if !e.Amount.Equal(e.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: at most two decimal places, got %s", apperrors.ErrInvalidAmount, e.Amount)
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", e.Type)
	}
	if e.HospitalID == "" {
		return nil, fmt.Errorf("%w: hospital id is required", apperrors.ErrInvalidState)
	}

	wallets := tx.Wallets()
	var (
		wallet *models.Wallet
		err    error
	)
	if e.Type.IsCredit() {
		wallet, err = s.lockOrCreate(ctx, wallets, e.HospitalID)
	} else {
		wallet, err = wallets.GetByHospitalIDForUpdate(ctx, e.HospitalID)
		if errors.Is(err, repositories.ErrRecordNotFound) {
			err = fmt.Errorf("%w: hospital %s has no wallet", apperrors.ErrInsufficientBalance, e.HospitalID)
		}
	}
	if err != nil {
		s.metrics.RecordOperationResult(string(e.Type), "error")
		return nil, err
	}

	before := wallet.Balance
	var after decimal.Decimal
	if e.Type.IsCredit() {
		if err := wallets.ApplyCredit(ctx, wallet.ID, e.Amount); err != nil {
			return nil, err
		}
		after = before.Add(e.Amount)
	} else {
		if err := wallets.ApplyDebit(ctx, wallet.ID, e.Amount); err != nil {
			if errors.Is(err, repositories.ErrInsufficientFunds) {
				s.metrics.RecordOperationResult(string(e.Type), "insufficient_balance")
				return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientBalance, before, e.Amount)
			}
			return nil, err
		}
		after = before.Sub(e.Amount)
	}

	row := &models.WalletTransaction{
		ID:           uuid.NewString(),
		WalletID:     wallet.ID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: after,
		Description:  e.Description,
	}
	if e.ReferralID != "" {
		row.RelatedReferralID = &e.ReferralID
	}
	if e.PayoutID != "" {
		row.RelatedPayoutID = &e.PayoutID
	}
	if err := wallets.CreateTransaction(ctx, row); err != nil {
		return nil, err
	}

	s.metrics.RecordBalanceChange(e.HospitalID, before, after)
	s.metrics.RecordOperationResult(string(e.Type), "success")
	return row, nil
}

func (s *service) lockOrCreate(ctx context.Context, wallets repositories.WalletRepository, hospitalID string) (*models.Wallet, error) {
	wallet, err := wallets.GetByHospitalIDForUpdate(ctx, hospitalID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, err
	}

	err = wallets.Create(ctx, &models.Wallet{
		ID:         uuid.NewString(),
		HospitalID: hospitalID,
		Balance:    decimal.Zero,
		Currency:   s.config.Currency,
	})
	// A concurrent first credit may have created it; either way lock the row that exists now.
	if err != nil && !errors.Is(err, repositories.ErrDuplicateWallet) {
		return nil, err
	}
	if err == nil {
		s.log.Info().Str("hospital_id", hospitalID).Msg("wallet created")
	}
	return wallets.GetByHospitalIDForUpdate(ctx, hospitalID)
}

func (s *service) post(ctx context.Context, e Entry) (*models.WalletTransaction, error) {
	var row *models.WalletTransaction
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		row, err = s.Apply(ctx, tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, e.HospitalID)
	return row, nil
}

func (s *service) Credit(ctx context.Context, hospitalID string, amount decimal.Decimal, description, relatedReferralID string) (*models.WalletTransaction, error) {
	typ := models.TransactionTypeCredit
	if relatedReferralID != "" {
		typ = models.TransactionTypeReferralEarning
	}
	return s.post(ctx, Entry{
		HospitalID:  hospitalID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		ReferralID:  relatedReferralID,
	})
}

func (s *service) Debit(ctx context.Context, hospitalID string, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	return s.post(ctx, Entry{
		HospitalID:  hospitalID,
		Type:        models.TransactionTypeDebit,
		Amount:      amount,
		Description: description,
	})
}
