package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralStatus is the lifecycle state of a referral.
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "PENDING"
	ReferralStatusAccepted  ReferralStatus = "ACCEPTED"
	ReferralStatusRejected  ReferralStatus = "REJECTED"
	ReferralStatusCompleted ReferralStatus = "COMPLETED"
)

// IsTerminal reports whether no further transition is accepted.
func (s ReferralStatus) IsTerminal() bool {
	return s == ReferralStatusRejected || s == ReferralStatusCompleted
}

// PaymentStatus tracks the gateway payment for a referral.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "UNPAID"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// PaymentBreakdown is how the patient's fee is divided.
type PaymentBreakdown struct {
	PatientAmount            decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"patient_amount"`
	PlatformFee              decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"platform_fee"`
	HospitalShare            decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"hospital_share"`
	SourceHospitalShare      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"source_hospital_share"`
	DestinationHospitalShare decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"destination_hospital_share"`
}

// Balanced reports whether the settled shares account for the whole fee.
func (b PaymentBreakdown) Balanced() bool {
	return b.PatientAmount.Equal(b.PlatformFee.Add(b.SourceHospitalShare).Add(b.DestinationHospitalShare))
}

// Referral moves a patient from a source to a destination hospital for a fixed fee.
type Referral struct {
	ID                    string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PatientID             string           `gorm:"type:varchar(36);index;not null" json:"patient_id"`
	SourceHospitalID      string           `gorm:"type:varchar(36);index:idx_referral_source_status,priority:1;not null" json:"source_hospital_id"`
	DestinationHospitalID string           `gorm:"type:varchar(36);index:idx_referral_dest_status,priority:1;not null" json:"destination_hospital_id"`
	Reason                string           `json:"reason,omitempty"`
	Status                ReferralStatus   `gorm:"type:varchar(16);not null;index:idx_referral_source_status,priority:2;index:idx_referral_dest_status,priority:2" json:"status"`
	PaymentOrderID        string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_order_id"`
	PaymentID             string           `gorm:"type:varchar(64);not null;default:''" json:"payment_id,omitempty"`
	PaymentStatus         PaymentStatus    `gorm:"type:varchar(16);not null" json:"payment_status"`
	Currency              string           `gorm:"type:varchar(3);not null" json:"currency"`
	Breakdown             PaymentBreakdown `gorm:"embedded;embeddedPrefix:payment_" json:"breakdown"`
	AcceptedAt            *time.Time       `json:"accepted_at,omitempty"`
	RejectedAt            *time.Time       `json:"rejected_at,omitempty"`
	CompletedAt           *time.Time       `json:"completed_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// IsSettled reports whether a payment has been recorded for the referral.
func (r *Referral) IsSettled() bool {
	return r.PaymentID != ""
}
