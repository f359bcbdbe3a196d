package grid

import (
	"fmt"
	"math"

	"zoneGridBot/internal/domain"
)

// DefaultOccupancyTolerance is the absolute price distance within which an
// open trade's entry counts as occupying a grid level. It absorbs execution
// slippage between the intended grid price and the filled price.
const DefaultOccupancyTolerance = 10.0

// levelEpsilon absorbs float error in the band/step ratio so a value landing
// just under an integer still yields the top level.
const levelEpsilon = 1e-9

// Levels derives the discretized price levels of a zone: price_low,
// price_low+step, ... up to and including the last value <= price_high.
// The result is regenerated every tick; nothing is cached because both the
// zone bounds and the step are hot-reloadable.
func Levels(zone *domain.Zone, step float64) ([]float64, error) {
	if zone == nil {
		return nil, fmt.Errorf("zone is required")
	}
	if step <= 0 {
		return nil, fmt.Errorf("grid step must be positive, got %.4f", step)
	}
	if zone.PriceLow >= zone.PriceHigh {
		return nil, fmt.Errorf("zone %q: price_low (%.2f) must be below price_high (%.2f)", zone.Name, zone.PriceLow, zone.PriceHigh)
	}

	count := int(math.Floor((zone.PriceHigh-zone.PriceLow)/step+levelEpsilon)) + 1
	levels := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		levels = append(levels, zone.PriceLow+float64(i)*step)
	}
	return levels, nil
}

// IsOccupied reports whether any open trade's entry price lies within
// tolerance of the given level.
func IsOccupied(level float64, openTrades []*domain.Trade, tolerance float64) bool {
	for _, t := range openTrades {
		if !t.IsOpen() {
			continue
		}
		if math.Abs(t.EntryPrice-level) < tolerance {
			return true
		}
	}
	return false
}

// SelectEntryLevel scans levels in ascending order and returns the first
// level L whose bucket (L-step, L] contains the current price and which is
// not occupied. Returns 0, false when no level qualifies.
func SelectEntryLevel(levels []float64, currentPrice, step, tolerance float64, openTrades []*domain.Trade) (float64, bool) {
	for _, level := range levels {
		inBucket := level-step < currentPrice && currentPrice <= level
		if !inBucket {
			continue
		}
		if IsOccupied(level, openTrades, tolerance) {
			continue
		}
		return level, true
	}
	return 0, false
}
