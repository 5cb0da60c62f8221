package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateWallet   = errors.New("wallet already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Store groups the repositories that take part in one unit of work.
// ExecuteInTransaction hands fn a Store bound to a single transaction;
// any error returned by fn rolls every write back.
type Store interface {
	Wallets() WalletRepository
	Referrals() ReferralRepository
	Payouts() PayoutRepository
	Hospitals() HospitalRepository
	ExecuteInTransaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by gorm.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Wallets() WalletRepository     { return NewWalletRepository(s.db) }
func (s *gormStore) Referrals() ReferralRepository { return NewReferralRepository(s.db) }
func (s *gormStore) Payouts() PayoutRepository     { return NewPayoutRepository(s.db) }
func (s *gormStore) Hospitals() HospitalRepository { return NewHospitalRepository(s.db) }

func (s *gormStore) ExecuteInTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
