package payout

import (
	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultMinimum is the smallest withdrawal when none is configured.
var DefaultMinimum = decimal.NewFromInt(100)

// Config holds payout limits.
type Config struct {
	Minimum decimal.Decimal
}

// Request is a hospital's withdrawal request.
type Request struct {
	HospitalID  string             `json:"hospital_id" validate:"required"`
	Amount      decimal.Decimal    `json:"amount"`
	BankDetails models.BankDetails `json:"bank_details"`
}

// Page is a newest-first slice of a hospital's payout requests.
type Page struct {
	Payouts []models.PayoutRequest `json:"payouts"`
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// PendingPayout is an entry in the admin review queue.
type PendingPayout struct {
	Payout         models.PayoutRequest `json:"payout"`
	CurrentBalance decimal.Decimal      `json:"current_balance"`
}
