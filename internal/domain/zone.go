package domain

import "fmt"

// Zone is an operator-defined price band with an allocated capital budget.
// Zones are created and edited by the external configuration surface; the
// engine only reads them.
type Zone struct {
	ID               int64      // Unique identifier (from DB)
	Name             string     // Operator-facing zone name
	PriceLow         float64    // Lower bound of the band (inclusive)
	PriceHigh        float64    // Upper bound of the band (inclusive)
	CapitalAllocated float64    // Budget available for trades in this zone (quote currency)
	Status           ZoneStatus // Active, Inactive or Reserve
}

// Validate checks the structural invariants of a zone.
func (z *Zone) Validate() error {
	if z.Name == "" {
		return fmt.Errorf("zone name must not be empty")
	}
	if z.PriceLow >= z.PriceHigh {
		return fmt.Errorf("zone %q: price_low (%.2f) must be below price_high (%.2f)", z.Name, z.PriceLow, z.PriceHigh)
	}
	if z.CapitalAllocated < 0 {
		return fmt.Errorf("zone %q: capital_allocated must not be negative", z.Name)
	}
	return nil
}

// Contains reports whether the given price lies inside the zone band.
func (z *Zone) Contains(price float64) bool {
	return price >= z.PriceLow && price <= z.PriceHigh
}

// IsActive reports whether the zone is tradable.
func (z *Zone) IsActive() bool {
	return z.Status == ZoneStatusActive
}
