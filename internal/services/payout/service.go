// Package payout implements the withdrawal workflow: a hospital requests a
// payout, an admin approves it (debiting the wallet) or rejects it.
package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/services/notification"
	"medipay/internal/services/wallet"
	"medipay/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type service struct {
	store    repositories.Store
	ledger   Ledger
	notifier notification.Notifier
	config   Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates the payout service. notifier may be nil.
func NewService(store repositories.Store, ledger Ledger, notifier notification.Notifier, config Config, log zerolog.Logger) Service {
	if store == nil || ledger == nil {
		panic("store and ledger are required")
	}
	if config.Minimum.IsZero() {
		config.Minimum = DefaultMinimum
	}
	if notifier == nil {
		notifier = notification.NewLogNotifier(log)
	}
	return &service{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		config:   config,
		log:      log.With().Str("component", "payout").Logger(),
		now:      time.Now,
	}
}

func (s *service) Request(ctx context.Context, req Request) (*models.PayoutRequest, error) {
	amount := validation.New()
	amount.PositiveAmount("amount", req.Amount)
	amount.Check(req.Amount.GreaterThanOrEqual(s.config.Minimum), "amount", "must be at least "+s.config.Minimum.StringFixed(2))
	if msg, bad := amount.Errors["amount"]; bad {
		return nil, fmt.Errorf("%w: amount %s, got %s", apperrors.ErrInvalidAmount, msg, req.Amount)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// Advisory only: approval re-checks the balance under lock.
	w, err := s.store.Wallets().GetByHospitalID(ctx, req.HospitalID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: hospital %s has no wallet", apperrors.ErrInsufficientBalance, req.HospitalID)
	}
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(w.Balance) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientBalance, w.Balance, req.Amount)
	}

	p := &models.PayoutRequest{
		ID:          uuid.NewString(),
		WalletID:    w.ID,
		HospitalID:  req.HospitalID,
		Amount:      req.Amount,
		BankDetails: req.BankDetails,
		Status:      models.PayoutStatusPending,
		RequestedAt: s.now(),
	}
	if err := s.store.Payouts().Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("payout_id", p.ID).
		Str("hospital_id", p.HospitalID).
		Str("amount", p.Amount.StringFixed(2)).
		Str("account", p.BankDetails.MaskedAccountNumber()).
		Msg("payout requested")
	s.notify(ctx, p.HospitalID, fmt.Sprintf("Payout request of %s submitted for review", p.Amount.StringFixed(2)))
	return p, nil
}

// Approve debits the wallet and marks the request APPROVED in one
// transaction. If the balance no longer covers the amount nothing changes.
func (s *service) Approve(ctx context.Context, payoutID, notes string) (*models.PayoutRequest, error) {
	var hospitalID string
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		p, err := s.lockPending(ctx, tx, payoutID)
		if err != nil {
			return err
		}
		hospitalID = p.HospitalID

		if _, err := s.ledger.Apply(ctx, tx, wallet.Entry{
			HospitalID:  p.HospitalID,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      p.Amount,
			Description: fmt.Sprintf("Payout to %s %s", p.BankDetails.BankName, p.BankDetails.MaskedAccountNumber()),
			PayoutID:    p.ID,
		}); err != nil {
			return err
		}
		return s.resolve(ctx, tx, payoutID, models.PayoutStatusApproved, notes)
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Invalidate(ctx, hospitalID)

	p, err := s.Get(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("payout_id", p.ID).Str("hospital_id", p.HospitalID).Str("amount", p.Amount.StringFixed(2)).Msg("payout approved")
	s.notify(ctx, p.HospitalID, fmt.Sprintf("Payout of %s approved", p.Amount.StringFixed(2)))
	return p, nil
}

func (s *service) Reject(ctx context.Context, payoutID, notes string) (*models.PayoutRequest, error) {
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if _, err := s.lockPending(ctx, tx, payoutID); err != nil {
			return err
		}
		return s.resolve(ctx, tx, payoutID, models.PayoutStatusRejected, notes)
	})
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("payout_id", p.ID).Str("hospital_id", p.HospitalID).Msg("payout rejected")
	msg := "Payout request rejected"
	if notes != "" {
		msg += ": " + notes
	}
	s.notify(ctx, p.HospitalID, msg)
	return p, nil
}

func (s *service) lockPending(ctx context.Context, tx repositories.Store, payoutID string) (*models.PayoutRequest, error) {
	p, err := tx.Payouts().GetByIDForUpdate(ctx, payoutID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payout %s", apperrors.ErrNotFound, payoutID)
	}
	if err != nil {
		return nil, err
	}
	if p.Status != models.PayoutStatusPending {
		return nil, fmt.Errorf("%w: payout is %s", apperrors.ErrInvalidState, p.Status)
	}
	return p, nil
}

func (s *service) resolve(ctx context.Context, tx repositories.Store, payoutID string, to models.PayoutStatus, notes string) error {
	ok, err := tx.Payouts().Resolve(ctx, payoutID, to, notes, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: payout %s is no longer pending", apperrors.ErrInvalidState, payoutID)
	}
	return nil
}

func (s *service) Get(ctx context.Context, payoutID string) (*models.PayoutRequest, error) {
	p, err := s.store.Payouts().GetByID(ctx, payoutID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payout %s", apperrors.ErrNotFound, payoutID)
	}
	return p, err
}

func (s *service) ListForHospital(ctx context.Context, hospitalID string, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = wallet.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.store.Payouts().ListByHospital(ctx, hospitalID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page{Payouts: rows, Total: total, Limit: limit, Offset: offset}, nil
}

// ListPending returns the review queue, oldest first, with each hospital's balance.
func (s *service) ListPending(ctx context.Context) ([]PendingPayout, error) {
	rows, err := s.store.Payouts().ListByStatus(ctx, models.PayoutStatusPending)
	if err != nil {
		return nil, err
	}
	out := make([]PendingPayout, 0, len(rows))
	for _, p := range rows {
		b, err := s.ledger.GetBalance(ctx, p.HospitalID)
		if err != nil {
			return nil, err
		}
		out = append(out, PendingPayout{Payout: p, CurrentBalance: b.Balance})
	}
	return out, nil
}

func (s *service) notify(ctx context.Context, userID, message string) {
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("notification failed")
	}
}
