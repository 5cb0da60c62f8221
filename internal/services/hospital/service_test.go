package hospital

import (
	"context"
	"testing"

	apperrors "medipay/internal/errors"
	"medipay/internal/models"
	"medipay/internal/repositories/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memstore.New().Hospitals())

	require.NoError(t, svc.Register(ctx, &models.Hospital{ID: "h1", Name: "City General", TotalBeds: 200, OccupiedBeds: 50}))

	h, err := svc.GetHospital(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "City General", h.Name)

	occ, err := svc.GetOccupancy(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, occ)

	require.NoError(t, svc.UpdateOccupancy(ctx, "h1", 200))
	occ, err = svc.GetOccupancy(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, occ)

	_, err = svc.GetHospital(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateOccupancy(ctx, "missing", 1), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateOccupancy(ctx, "h1", -1), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Register(ctx, &models.Hospital{ID: "h2"}), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.Register(ctx, &models.Hospital{Name: "Nameless"}), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.Register(ctx, &models.Hospital{ID: "h3", Name: "Ward", TotalBeds: -1}), apperrors.ErrInvalidAmount)
}

func TestOccupancyPercent_NoBedsIsFull(t *testing.T) {
	h := models.Hospital{TotalBeds: 0}
	assert.Equal(t, 100.0, h.OccupancyPercent())
}
