package repositories

import (
	"context"
	"fmt"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.PayoutRequest) error {
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return fmt.Errorf("failed to create payout request: %w", err)
	}
	return nil
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*models.PayoutRequest, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *payoutRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.PayoutRequest, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *payoutRepository) get(db *gorm.DB, id string) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	if err := db.Where("id = ?", id).First(&payout).Error; err != nil {
		if notFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payout request: %w", err)
	}
	return &payout, nil
}

func (r *payoutRepository) Resolve(ctx context.Context, id string, to models.PayoutStatus, notes string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, models.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":       to,
			"admin_notes":  notes,
			"processed_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to resolve payout request: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *payoutRepository) ListByHospital(ctx context.Context, hospitalID string, limit, offset int) ([]models.PayoutRequest, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("hospital_id = ?", hospitalID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payout requests: %w", err)
	}

	var payouts []models.PayoutRequest
	err = r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("requested_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payouts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payout requests: %w", err)
	}
	return payouts, total, nil
}

func (r *payoutRepository) ListByStatus(ctx context.Context, status models.PayoutStatus) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("requested_at ASC").
		Find(&payouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payout requests: %w", err)
	}
	return payouts, nil
}

func (r *payoutRepository) SumByStatus(ctx context.Context, hospitalID string, status models.PayoutStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("hospital_id = ? AND status = ?", hospitalID, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payout requests: %w", err)
	}
	return total, nil
}
