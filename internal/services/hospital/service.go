// Package hospital serves hospital lookups and bed occupancy from the
// hospitals read model.
package hospital

import (
	"context"
	"errors"
	"fmt"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/validation"
)

// Directory resolves hospital ids.
type Directory interface {
	GetHospital(ctx context.Context, id string) (*models.Hospital, error)
}

// CapacityTracker reports current bed occupancy as a percentage 0..100.
type CapacityTracker interface {
	GetOccupancy(ctx context.Context, hospitalID string) (float64, error)
}

// Service implements both collaborators over a HospitalRepository.
type Service struct {
	repo repositories.HospitalRepository
}

func NewService(repo repositories.HospitalRepository) *Service {
	return &Service{repo: repo}
}

var (
	_ Directory       = (*Service)(nil)
	_ CapacityTracker = (*Service)(nil)
)

func (s *Service) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	h, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: hospital %s", apperrors.ErrNotFound, id)
	}
	return h, err
}

func (s *Service) GetOccupancy(ctx context.Context, hospitalID string) (float64, error) {
	h, err := s.GetHospital(ctx, hospitalID)
	if err != nil {
		return 0, err
	}
	return h.OccupancyPercent(), nil
}

// List returns every hospital in the directory.
func (s *Service) List(ctx context.Context) ([]models.Hospital, error) {
	return s.repo.List(ctx)
}

// Register adds or replaces a hospital entry.
func (s *Service) Register(ctx context.Context, h *models.Hospital) error {
	v := validation.New()
	v.Required("id", h.ID)
	v.Required("name", h.Name)
	if err := v.Err(); err != nil {
		return err
	}
	if h.TotalBeds < 0 || h.OccupiedBeds < 0 {
		return fmt.Errorf("%w: bed counts must be non-negative", apperrors.ErrInvalidAmount)
	}
	return s.repo.Upsert(ctx, h)
}

// UpdateOccupancy records the current number of occupied beds.
func (s *Service) UpdateOccupancy(ctx context.Context, hospitalID string, occupiedBeds int) error {
	if occupiedBeds < 0 {
		return fmt.Errorf("%w: occupied beds must be non-negative", apperrors.ErrInvalidAmount)
	}
	err := s.repo.UpdateOccupancy(ctx, hospitalID, occupiedBeds)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w: hospital %s", apperrors.ErrNotFound, hospitalID)
	}
	return err
}
