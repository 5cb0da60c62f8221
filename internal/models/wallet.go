package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a hospital's running balance of referral earnings.
type Wallet struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	HospitalID     string          `gorm:"uniqueIndex;type:varchar(36);not null" json:"hospital_id"`
	Balance        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	TotalEarned    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_withdrawn"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Version        int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
