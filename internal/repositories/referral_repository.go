package repositories

import (
	"context"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// ReferralRepository persists referrals. The two mutating methods are
// compare-and-swap updates: they report false when the row was not in an
// expected state, and never overwrite a concurrent winner.
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id string) (*models.Referral, error)
	UpdateStatus(ctx context.Context, id string, from []models.ReferralStatus, to models.ReferralStatus, at time.Time) (bool, error)
	ClaimSettlement(ctx context.Context, id, paymentID string, breakdown models.PaymentBreakdown, at time.Time) (bool, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Referral, error)
	ListByHospital(ctx context.Context, hospitalID string, incoming bool) ([]models.Referral, error)
	// CompletedTotals counts settled referrals and sums the platform fee they kept.
	CompletedTotals(ctx context.Context) (count int64, platformFees decimal.Decimal, err error)
}

// SettleableStatuses are the states a payment may still be confirmed from.
var SettleableStatuses = []models.ReferralStatus{
	models.ReferralStatusPending,
	models.ReferralStatusAccepted,
}
