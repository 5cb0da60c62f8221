package memstore

import (
	"context"
	"sort"
	"time"

	"medipay/internal/models"
	"medipay/internal/repositories"
)

type hospitalRepository struct {
	s *Store
}

func (r *hospitalRepository) GetByID(_ context.Context, id string) (*models.Hospital, error) {
	r.s.lock()
	defer r.s.unlock()

	h, ok := r.s.state().hospitals[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &h, nil
}

func (r *hospitalRepository) List(_ context.Context) ([]models.Hospital, error) {
	r.s.lock()
	defer r.s.unlock()

	out := make([]models.Hospital, 0, len(r.s.state().hospitals))
	for _, h := range r.s.state().hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *hospitalRepository) Upsert(_ context.Context, hospital *models.Hospital) error {
	r.s.lock()
	defer r.s.unlock()

	now := time.Now()
	if hospital.CreatedAt.IsZero() {
		hospital.CreatedAt = now
	}
	hospital.UpdatedAt = now
	r.s.state().hospitals[hospital.ID] = *hospital
	return nil
}

func (r *hospitalRepository) UpdateOccupancy(_ context.Context, id string, occupiedBeds int) error {
	r.s.lock()
	defer r.s.unlock()

	st := r.s.state()
	h, ok := st.hospitals[id]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	h.OccupiedBeds = occupiedBeds
	h.UpdatedAt = time.Now()
	st.hospitals[id] = h
	return nil
}
