package referral

import (
	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds the fee schedule.
type Config struct {
	ReferralFee decimal.Decimal
	PlatformFee decimal.Decimal
	Currency    string
}

// Direction selects a hospital's incoming or outgoing referrals.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// CreateRequest opens a referral for a patient.
type CreateRequest struct {
	PatientID             string `json:"-"`
	SourceHospitalID      string `json:"source_hospital_id" validate:"required"`
	DestinationHospitalID string `json:"destination_hospital_id" validate:"required"`
	Reason                string `json:"reason" validate:"max=500"`
}

// CreateResult is what the patient's client needs to start checkout.
type CreateResult struct {
	ReferralID     string          `json:"referral_id"`
	PaymentOrderID string          `json:"payment_order_id"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountMinor    int64           `json:"amount_minor"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id,omitempty"`
}

// Settlement is the outcome of a payment confirmation.
type Settlement struct {
	ReferralID     string                  `json:"referral_id"`
	Status         models.ReferralStatus   `json:"status"`
	PaymentID      string                  `json:"payment_id"`
	Breakdown      models.PaymentBreakdown `json:"breakdown"`
	AlreadySettled bool                    `json:"already_settled"`
	FallbackSplit  bool                    `json:"-"`
}

func settlementOf(r *models.Referral, already bool) *Settlement {
	return &Settlement{
		ReferralID:     r.ID,
		Status:         r.Status,
		PaymentID:      r.PaymentID,
		Breakdown:      r.Breakdown,
		AlreadySettled: already,
	}
}
