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

type referralRepository struct {
	s *Store
}

func (r *referralRepository) Create(_ context.Context, referral *models.Referral) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	if _, ok := st.referrals[referral.ID]; ok {
		return fmt.Errorf("referral %s already exists", referral.ID)
	}
	now := time.Now()
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = now
	}
	referral.UpdatedAt = now
	st.referrals[referral.ID] = *referral
	return nil
}

func (r *referralRepository) GetByID(_ context.Context, id string) (*models.Referral, error) {
	r.s.lock()
	defer r.s.unlock()

	ref, ok := r.s.state().referrals[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &ref, nil
}

func statusIn(s models.ReferralStatus, set []models.ReferralStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (r *referralRepository) UpdateStatus(_ context.Context, id string, from []models.ReferralStatus, to models.ReferralStatus, at time.Time) (bool, error) {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	ref, ok := st.referrals[id]
	if !ok || !statusIn(ref.Status, from) {
		return false, nil
	}
	ref.Status = to
	ref.UpdatedAt = at
	switch to {
	case models.ReferralStatusAccepted:
		ref.AcceptedAt = &at
	case models.ReferralStatusRejected:
		ref.RejectedAt = &at
	}
	st.referrals[id] = ref
	return true, nil
}

func (r *referralRepository) ClaimSettlement(_ context.Context, id, paymentID string, b models.PaymentBreakdown, at time.Time) (bool, error) {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	ref, ok := st.referrals[id]
	if !ok || ref.PaymentID != "" || !statusIn(ref.Status, repositories.SettleableStatuses) {
		return false, nil
	}
	ref.Status = models.ReferralStatusCompleted
	ref.PaymentID = paymentID
	ref.PaymentStatus = models.PaymentStatusCompleted
	ref.Breakdown = b
	ref.CompletedAt = &at
	ref.UpdatedAt = at
	st.referrals[id] = ref
	return true, nil
}

func (r *referralRepository) list(match func(models.Referral) bool) []models.Referral {
	r.s.lock()
	defer r.s.unlock()

	out := []models.Referral{}
	for _, ref := range r.s.state().referrals {
		if match(ref) {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *referralRepository) ListByPatient(_ context.Context, patientID string) ([]models.Referral, error) {
	return r.list(func(ref models.Referral) bool { return ref.PatientID == patientID }), nil
}

func (r *referralRepository) ListByHospital(_ context.Context, hospitalID string, incoming bool) ([]models.Referral, error) {
	return r.list(func(ref models.Referral) bool {
		if incoming {
			return ref.DestinationHospitalID == hospitalID
		}
		return ref.SourceHospitalID == hospitalID
	}), nil
}

func (r *referralRepository) CompletedTotals(_ context.Context) (int64, decimal.Decimal, error) {
	completed := r.list(func(ref models.Referral) bool { return ref.Status == models.ReferralStatusCompleted })
	fees := decimal.Zero
	for _, ref := range completed {
		fees = fees.Add(ref.Breakdown.PlatformFee)
	}
	return int64(len(completed)), fees, nil
}
