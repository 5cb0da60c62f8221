package split

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestOccupancyWeighted(t *testing.T) {
	tests := []struct {
		name       string
		destOcc    float64
		total      string
		wantSource string
		wantDest   string
	}{
		{"empty destination", 0, "110", "44", "66"},
		{"full destination", 100, "110", "33", "77"},
		{"half full", 50, "110", "38.5", "71.5"},
		{"above range clamps", 150, "110", "33", "77"},
		{"negative clamps", -20, "110", "44", "66"},
		{"rounding goes to destination", 33, "110", "40.37", "69.63"},
		{"odd minor unit", 0, "0.01", "0", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OccupancyWeighted{}.CalculateSplit(10, tt.destOcc, d(tt.total))
			require.NoError(t, err)
			assert.True(t, s.Source.Equal(d(tt.wantSource)), "source %s", s.Source)
			assert.True(t, s.Destination.Equal(d(tt.wantDest)), "destination %s", s.Destination)
			assert.NoError(t, Validate(s, d(tt.total)))
		})
	}
}

func TestOccupancyWeighted_NaN(t *testing.T) {
	s, err := OccupancyWeighted{}.CalculateSplit(0, math.NaN(), d("110"))
	require.NoError(t, err)
	assert.True(t, s.Destination.Equal(d("66")))
}

func TestFixedRatio(t *testing.T) {
	s, err := DefaultFallback.CalculateSplit(0, 0, d("110"))
	require.NoError(t, err)
	assert.True(t, s.Source.Equal(d("44")))
	assert.True(t, s.Destination.Equal(d("66")))

	_, err = FixedRatio{DestinationPercent: 120}.CalculateSplit(0, 0, d("110"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Split{Source: d("44"), Destination: d("66")}, d("110")))
	assert.Error(t, Validate(Split{Source: d("44"), Destination: d("65.99")}, d("110")))
	assert.Error(t, Validate(Split{Source: d("-1"), Destination: d("111")}, d("110")))
}

type brokenCalculator struct {
	split Split
	err   error
}

func (b brokenCalculator) CalculateSplit(_, _ float64, _ decimal.Decimal) (Split, error) {
	return b.split, b.err
}

func TestResolve_FallsBack(t *testing.T) {
	total := d("110")

	s, fell, err := Resolve(OccupancyWeighted{}, nil, 0, 100, total)
	require.NoError(t, err)
	assert.False(t, fell)
	assert.True(t, s.Destination.Equal(d("77")))

	s, fell, err = Resolve(brokenCalculator{err: errors.New("boom")}, nil, 0, 100, total)
	require.NoError(t, err)
	assert.True(t, fell)
	assert.True(t, s.Destination.Equal(d("66")))

	s, fell, err = Resolve(brokenCalculator{split: Split{Source: d("100"), Destination: d("100")}}, nil, 0, 0, total)
	require.NoError(t, err)
	assert.True(t, fell)
	assert.True(t, s.Source.Equal(d("44")))

	_, _, err = Resolve(nil, FixedRatio{DestinationPercent: -1}, 0, 0, total)
	assert.Error(t, err)
}
