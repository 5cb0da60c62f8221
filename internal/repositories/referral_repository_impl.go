package repositories

import (
	"context"
	"fmt"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) error {
	if err := r.db.WithContext(ctx).Create(referral).Error; err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) GetByID(ctx context.Context, id string) (*models.Referral, error) {
	var referral models.Referral
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&referral).Error; err != nil {
		if notFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &referral, nil
}

func (r *referralRepository) UpdateStatus(ctx context.Context, id string, from []models.ReferralStatus, to models.ReferralStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case models.ReferralStatusAccepted:
		updates["accepted_at"] = at
	case models.ReferralStatusRejected:
		updates["rejected_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update referral status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *referralRepository) ClaimSettlement(ctx context.Context, id, paymentID string, b models.PaymentBreakdown, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("id = ? AND payment_id = '' AND status IN ?", id, SettleableStatuses).
		Updates(map[string]interface{}{
			"status":                             models.ReferralStatusCompleted,
			"payment_id":                         paymentID,
			"payment_status":                     models.PaymentStatusCompleted,
			"payment_patient_amount":             b.PatientAmount,
			"payment_platform_fee":               b.PlatformFee,
			"payment_hospital_share":             b.HospitalShare,
			"payment_source_hospital_share":      b.SourceHospitalShare,
			"payment_destination_hospital_share": b.DestinationHospitalShare,
			"completed_at":                       at,
			"updated_at":                         at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim referral settlement: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *referralRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Referral, error) {
	var referrals []models.Referral
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patient referrals: %w", err)
	}
	return referrals, nil
}

func (r *referralRepository) ListByHospital(ctx context.Context, hospitalID string, incoming bool) ([]models.Referral, error) {
	column := "source_hospital_id"
	if incoming {
		column = "destination_hospital_id"
	}

	var referrals []models.Referral
	err := r.db.WithContext(ctx).
		Where(column+" = ?", hospitalID).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hospital referrals: %w", err)
	}
	return referrals, nil
}

func (r *referralRepository) CompletedTotals(ctx context.Context) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Fees  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Select("COUNT(*) AS count, COALESCE(SUM(payment_platform_fee), 0) AS fees").
		Where("status = ?", models.ReferralStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to total completed referrals: %w", err)
	}
	return row.Count, row.Fees, nil
}
