package payout

import (
	"context"

	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/services/wallet"
)

// Service manages hospital withdrawal requests and their admin review.
type Service interface {
	Request(ctx context.Context, req Request) (*models.PayoutRequest, error)
	Approve(ctx context.Context, payoutID, notes string) (*models.PayoutRequest, error)
	Reject(ctx context.Context, payoutID, notes string) (*models.PayoutRequest, error)

	Get(ctx context.Context, payoutID string) (*models.PayoutRequest, error)
	ListForHospital(ctx context.Context, hospitalID string, limit, offset int) (*Page, error)
	ListPending(ctx context.Context) ([]PendingPayout, error)
}

// Ledger is the part of the wallet service payouts need.
type Ledger interface {
	Apply(ctx context.Context, tx repositories.Store, entry wallet.Entry) (*models.WalletTransaction, error)
	GetBalance(ctx context.Context, hospitalID string) (*wallet.Balance, error)
	Invalidate(ctx context.Context, hospitalIDs ...string)
}
