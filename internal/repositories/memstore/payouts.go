package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"

	"github.com/shopspring/decimal"
)

type payoutRepository struct {
	s *Store
}

func (r *payoutRepository) Create(_ context.Context, payout *models.PayoutRequest) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	if _, ok := st.payouts[payout.ID]; ok {
		return fmt.Errorf("payout request %s already exists", payout.ID)
	}
	if payout.RequestedAt.IsZero() {
		payout.RequestedAt = time.Now()
	}
	st.payouts[payout.ID] = *payout
	return nil
}

func (r *payoutRepository) GetByID(_ context.Context, id string) (*models.PayoutRequest, error) {
	r.s.lock()
	defer r.s.unlock()

	p, ok := r.s.state().payouts[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &p, nil
}

func (r *payoutRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.PayoutRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *payoutRepository) Resolve(_ context.Context, id string, to models.PayoutStatus, notes string, at time.Time) (bool, error) {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	p, ok := st.payouts[id]
	if !ok || p.Status != models.PayoutStatusPending {
		return false, nil
	}
	p.Status = to
	p.AdminNotes = notes
	p.ProcessedAt = &at
	st.payouts[id] = p
	return true, nil
}

func (r *payoutRepository) filter(match func(models.PayoutRequest) bool) []models.PayoutRequest {
	out := []models.PayoutRequest{}
	for _, p := range r.s.state().payouts {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *payoutRepository) ListByHospital(_ context.Context, hospitalID string, limit, offset int) ([]models.PayoutRequest, int64, error) {
	r.s.lock()
	defer r.s.unlock()

	all := r.filter(func(p models.PayoutRequest) bool { return p.HospitalID == hospitalID })
	sort.Slice(all, func(i, j int) bool { return all[i].RequestedAt.After(all[j].RequestedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []models.PayoutRequest{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *payoutRepository) ListByStatus(_ context.Context, status models.PayoutStatus) ([]models.PayoutRequest, error) {
	r.s.lock()
	defer r.s.unlock()

	out := r.filter(func(p models.PayoutRequest) bool { return p.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (r *payoutRepository) SumByStatus(_ context.Context, hospitalID string, status models.PayoutStatus) (decimal.Decimal, error) {
	r.s.lock()
	defer r.s.unlock()

	total := decimal.Zero
	for _, p := range r.s.state().payouts {
		if p.HospitalID == hospitalID && p.Status == status {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
