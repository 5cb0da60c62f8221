package repositories

import (
	"context"
	"fmt"
	"time"

	"medipay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type hospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepository(db *gorm.DB) HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&hospital).Error; err != nil {
		if notFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := r.db.WithContext(ctx).Order("name").Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) Upsert(ctx context.Context, hospital *models.Hospital) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "city", "specializations", "total_beds", "occupied_beds", "updated_at"}),
		}).
		Create(hospital).Error
	if err != nil {
		return fmt.Errorf("failed to upsert hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) UpdateOccupancy(ctx context.Context, id string, occupiedBeds int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Hospital{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"occupied_beds": occupiedBeds, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update occupancy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
