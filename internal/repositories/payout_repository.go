package repositories

import (
	"context"
	"time"

	"medipay/internal/models"

	"github.com/shopspring/decimal"
)

// PayoutRepository persists payout requests.
type PayoutRepository interface {
	Create(ctx context.Context, payout *models.PayoutRequest) error
	GetByID(ctx context.Context, id string) (*models.PayoutRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.PayoutRequest, error)
	// Resolve moves a PENDING request to a terminal status; false if it was no longer pending.
	Resolve(ctx context.Context, id string, to models.PayoutStatus, notes string, at time.Time) (bool, error)
	ListByHospital(ctx context.Context, hospitalID string, limit, offset int) ([]models.PayoutRequest, int64, error)
	ListByStatus(ctx context.Context, status models.PayoutStatus) ([]models.PayoutRequest, error)
	SumByStatus(ctx context.Context, hospitalID string, status models.PayoutStatus) (decimal.Decimal, error)
}
