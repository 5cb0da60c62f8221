package referral

import (
	"context"

	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/services/wallet"
)

// Service defines the referral lifecycle and payment settlement.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Accept(ctx context.Context, referralID, actingHospitalID string) (*models.Referral, error)
	Reject(ctx context.Context, referralID, actingHospitalID string) (*models.Referral, error)
	ConfirmPayment(ctx context.Context, referralID, gatewayPaymentID, signature string) (*Settlement, error)

	Get(ctx context.Context, referralID string) (*models.Referral, error)
	ListForPatient(ctx context.Context, patientID string) ([]models.Referral, error)
	ListForHospital(ctx context.Context, hospitalID string, direction Direction) ([]models.Referral, error)
}

// Ledger is the part of the wallet service settlement needs.
type Ledger interface {
	Apply(ctx context.Context, tx repositories.Store, entry wallet.Entry) (*models.WalletTransaction, error)
	Invalidate(ctx context.Context, hospitalIDs ...string)
}
