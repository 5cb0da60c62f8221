package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Provider names accepted in PAYMENT_PROVIDER.
const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
	ProviderSandbox  = "sandbox"
)

// DefaultTimeout bounds a single call to a provider.
const DefaultTimeout = 10 * time.Second

// OrderRequest asks the provider to open an order for a fixed amount.
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the provider's handle for a payment the patient will make.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// ToMinorUnits converts an amount in major units (rupees) to minor units (paise).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Receipt is the receipt reference sent with a referral's order.
func Receipt(referralID string) string {
	return "referral_" + referralID
}
