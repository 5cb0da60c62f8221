// Package memstore is an in-memory repositories.Store for development and tests.
//
// A single mutex serialises every operation. A unit of work holds the mutex
// for its whole duration and restores a snapshot if it fails, which gives the
// same all-or-nothing behaviour as the postgres store.
package memstore

import (
	"context"
	"sync"

	"medipay/internal/models"
	"medipay/internal/repositories"
)

type state struct {
	wallets          map[string]models.Wallet
	walletByHospital map[string]string
	transactions     []models.WalletTransaction
	referrals        map[string]models.Referral
	payouts          map[string]models.PayoutRequest
	hospitals        map[string]models.Hospital
}

func newState() *state {
	return &state{
		wallets:          make(map[string]models.Wallet),
		walletByHospital: make(map[string]string),
		referrals:        make(map[string]models.Referral),
		payouts:          make(map[string]models.PayoutRequest),
		hospitals:        make(map[string]models.Hospital),
	}
}

func (s *state) clone() *state {
	c := &state{
		wallets:          make(map[string]models.Wallet, len(s.wallets)),
		walletByHospital: make(map[string]string, len(s.walletByHospital)),
		transactions:     append([]models.WalletTransaction(nil), s.transactions...),
		referrals:        make(map[string]models.Referral, len(s.referrals)),
		payouts:          make(map[string]models.PayoutRequest, len(s.payouts)),
		hospitals:        make(map[string]models.Hospital, len(s.hospitals)),
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.walletByHospital {
		c.walletByHospital[k] = v
	}
	for k, v := range s.referrals {
		c.referrals[k] = v
	}
	for k, v := range s.payouts {
		c.payouts[k] = v
	}
	for k, v := range s.hospitals {
		c.hospitals[k] = v
	}
	return c
}

// Store implements repositories.Store in memory.
type Store struct {
	mu   *sync.Mutex
	data **state
	inTx bool
}

// New returns an empty store.
func New() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, data: &st}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *Store) state() *state {
	return *s.data
}

func (s *Store) Wallets() repositories.WalletRepository     { return &walletRepository{s: s} }
func (s *Store) Referrals() repositories.ReferralRepository { return &referralRepository{s: s} }
func (s *Store) Payouts() repositories.PayoutRepository     { return &payoutRepository{s: s} }
func (s *Store) Hospitals() repositories.HospitalRepository { return &hospitalRepository{s: s} }

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state().clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}
