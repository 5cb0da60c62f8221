// Package split divides a referral's hospital share between the referring
// (source) and receiving (destination) hospitals.
package split

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Split is the two-way division of a hospital share.
type Split struct {
	Source      decimal.Decimal `json:"source"`
	Destination decimal.Decimal `json:"destination"`
}

// Calculator is a pluggable split policy. Occupancies are percentages 0..100.
type Calculator interface {
	CalculateSplit(sourceOccupancy, destinationOccupancy float64, total decimal.Decimal) (Split, error)
}

// OccupancyWeighted gives the destination 60% of the share, rising linearly
// to 70% as its occupancy approaches 100%.
type OccupancyWeighted struct{}

func (OccupancyWeighted) CalculateSplit(_, destinationOccupancy float64, total decimal.Decimal) (Split, error) {
	occ := clamp(destinationOccupancy)
	destPercent := decimal.NewFromInt(60).Add(decimal.NewFromFloat(occ).Div(decimal.NewFromInt(10)))
	return byDestinationPercent(total, destPercent), nil
}

// FixedRatio always gives the destination DestinationPercent of the share.
type FixedRatio struct {
	DestinationPercent int64
}

// DefaultFallback is the 60/40 split used whenever the policy cannot be trusted.
var DefaultFallback = FixedRatio{DestinationPercent: 60}

func (f FixedRatio) CalculateSplit(_, _ float64, total decimal.Decimal) (Split, error) {
	if f.DestinationPercent < 0 || f.DestinationPercent > 100 {
		return Split{}, fmt.Errorf("destination percent %d out of range", f.DestinationPercent)
	}
	return byDestinationPercent(total, decimal.NewFromInt(f.DestinationPercent)), nil
}

// byDestinationPercent rounds the source share down to minor units and
// gives the remainder to the destination, so the parts always sum to total.
func byDestinationPercent(total, destPercent decimal.Decimal) Split {
	sourcePercent := decimal.NewFromInt(100).Sub(destPercent)
	source := total.Mul(sourcePercent).Div(decimal.NewFromInt(100)).RoundFloor(2)
	return Split{
		Source:      source,
		Destination: total.Sub(source),
	}
}

func clamp(occ float64) float64 {
	if math.IsNaN(occ) || occ < 0 {
		return 0
	}
	if occ > 100 {
		return 100
	}
	return occ
}

// Validate checks both parts are non-negative and sum exactly to total.
func Validate(s Split, total decimal.Decimal) error {
	if s.Source.IsNegative() || s.Destination.IsNegative() {
		return fmt.Errorf("negative share in split %s/%s", s.Source, s.Destination)
	}
	if !s.Source.Add(s.Destination).Equal(total) {
		return fmt.Errorf("split %s + %s does not sum to %s", s.Source, s.Destination, total)
	}
	return nil
}

// Resolve runs calc and falls back to fallback when it errors or produces
// an invalid split. The second return value reports whether the fallback was used.
func Resolve(calc, fallback Calculator, sourceOccupancy, destinationOccupancy float64, total decimal.Decimal) (Split, bool, error) {
	if calc != nil {
		s, err := calc.CalculateSplit(sourceOccupancy, destinationOccupancy, total)
		if err == nil && Validate(s, total) == nil {
			return s, false, nil
		}
	}

	if fallback == nil {
		fallback = DefaultFallback
	}
	s, err := fallback.CalculateSplit(sourceOccupancy, destinationOccupancy, total)
	if err != nil {
		return Split{}, true, err
	}
	if err := Validate(s, total); err != nil {
		return Split{}, true, err
	}
	return s, true, nil
}
