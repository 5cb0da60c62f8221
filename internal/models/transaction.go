package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a ledger row.
type TransactionType string

// Transaction types
const (
	TransactionTypeCredit          TransactionType = "CREDIT"
	TransactionTypeDebit           TransactionType = "DEBIT"
	TransactionTypeWithdrawal      TransactionType = "WITHDRAWAL"
	TransactionTypeReferralEarning TransactionType = "REFERRAL_EARNING"
)

// IsCredit reports whether rows of this type increase the balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeCredit || t == TransactionTypeReferralEarning
}

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeWithdrawal, TransactionTypeReferralEarning:
		return true
	}
	return false
}

// ErrImmutableTransaction is returned when something tries to change a ledger row.
var ErrImmutableTransaction = errors.New("wallet transactions are append-only")

// WalletTransaction is one immutable balance-affecting event.
type WalletTransaction struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WalletID          string          `gorm:"index:idx_wallet_tx_wallet_created,priority:1;type:varchar(36);not null" json:"wallet_id"`
	Type              TransactionType `gorm:"type:varchar(20);index;not null" json:"type"`
	Amount            decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	BalanceAfter      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	Description       string          `json:"description"`
	RelatedReferralID *string         `gorm:"type:varchar(36);index" json:"related_referral_id,omitempty"`
	RelatedPayoutID   *string         `gorm:"type:varchar(36);index" json:"related_payout_id,omitempty"`
	CreatedAt         time.Time       `gorm:"index:idx_wallet_tx_wallet_created,priority:2,sort:desc" json:"created_at"`
}

func (t *WalletTransaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableTransaction
}

func (t *WalletTransaction) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableTransaction
}
