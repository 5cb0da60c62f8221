package repositories

import (
	"context"

	"medipay/internal/models"
)

// HospitalRepository reads and maintains the hospital read model.
type HospitalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Hospital, error)
	List(ctx context.Context) ([]models.Hospital, error)
	Upsert(ctx context.Context, hospital *models.Hospital) error
	UpdateOccupancy(ctx context.Context, id string, occupiedBeds int) error
}
