package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the state of a withdrawal request.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusApproved   PayoutStatus = "APPROVED"
	PayoutStatusRejected   PayoutStatus = "REJECTED"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
)

// BankDetails is where an approved payout is sent.
type BankDetails struct {
	AccountHolderName string `gorm:"not null" json:"account_holder_name" validate:"required"`
	AccountNumber     string `gorm:"not null" json:"account_number" validate:"required,numeric,min=6,max=20"`
	IFSCCode          string `gorm:"not null" json:"ifsc_code" validate:"required,ifsc"`
	BankName          string `gorm:"not null" json:"bank_name" validate:"required"`
}

// MaskedAccountNumber keeps only the last four digits.
func (b BankDetails) MaskedAccountNumber() string {
	n := b.AccountNumber
	if len(n) <= 4 {
		return "****" + n
	}
	return "****" + n[len(n)-4:]
}

// PayoutRequest is a hospital's request to withdraw wallet funds.
type PayoutRequest struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WalletID    string          `gorm:"type:varchar(36);index;not null" json:"wallet_id"`
	HospitalID  string          `gorm:"type:varchar(36);index;not null" json:"hospital_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	BankDetails BankDetails     `gorm:"embedded;embeddedPrefix:bank_" json:"bank_details"`
	Status      PayoutStatus    `gorm:"type:varchar(16);index;not null" json:"status"`
	RequestedAt time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	AdminNotes  string          `json:"admin_notes,omitempty"`
}

// MarshalJSON never exposes the full account number.
func (p PayoutRequest) MarshalJSON() ([]byte, error) {
	type alias PayoutRequest
	out := alias(p)
	out.BankDetails.AccountNumber = p.BankDetails.MaskedAccountNumber()
	return json.Marshal(out)
}
