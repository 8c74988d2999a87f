package fare

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxSupportWorkers is the largest support-worker count a booking may request.
const MaxSupportWorkers = 4

// VehicleFeature is an optional vehicle adaptation priced as a flat surcharge.
type VehicleFeature struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Surcharge   decimal.Decimal `json:"surcharge"`
}

// SupportWorkerTier is the per-worker hourly rate charged when Count workers are booked.
type SupportWorkerTier struct {
	Count       int             `json:"count"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Description string          `json:"description"`
}

// HourWindow is a half-open [Start, End) range of clock hours.
type HourWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// PricingConfig is the rate table every fare is computed from.
// Treat it as read-only once a Calculator has been built from it.
type PricingConfig struct {
	BaseFare            decimal.Decimal     `json:"base_fare"`
	VehicleFeatures     []VehicleFeature    `json:"vehicle_features"`
	SupportWorkerTiers  []SupportWorkerTier `json:"support_worker_tiers"`
	DistanceRatePerMile decimal.Decimal     `json:"distance_rate_per_mile"`
	PeakMultiplier      decimal.Decimal     `json:"peak_multiplier"`
	MorningPeak         HourWindow          `json:"morning_peak"`
	EveningPeak         HourWindow          `json:"evening_peak"`

	// Location is the zone peak hours are read in. Nil means the zone
	// carried by the instant being evaluated.
	Location *time.Location `json:"-"`
}

// DefaultConfig returns the built-in UK rate table.
func DefaultConfig() PricingConfig {
	return PricingConfig{
		BaseFare: decimal.RequireFromString("8.50"),
		VehicleFeatures: []VehicleFeature{
			{ID: "wheelchair-ramp", Name: "Wheelchair ramp", Description: "Rear ramp access for a seated wheelchair user", Surcharge: decimal.RequireFromString("5.00")},
			{ID: "electric-hoist", Name: "Electric hoist", Description: "Powered platform lift for heavy power chairs", Surcharge: decimal.RequireFromString("7.50")},
			{ID: "swivel-seat", Name: "Swivel seat", Description: "Rotating passenger seat for assisted transfer", Surcharge: decimal.RequireFromString("3.00")},
			{ID: "oxygen-support", Name: "Oxygen support", Description: "Secured mounting for portable oxygen cylinders", Surcharge: decimal.RequireFromString("4.00")},
			{ID: "assistance-dog", Name: "Assistance dog", Description: "Space and bedding for an assistance dog", Surcharge: decimal.Zero},
			{ID: "extra-legroom", Name: "Extra legroom", Description: "Extended seat spacing for leg braces or casts", Surcharge: decimal.RequireFromString("2.50")},
		},
		SupportWorkerTiers: []SupportWorkerTier{
			{Count: 0, HourlyRate: decimal.Zero, Description: "No support worker"},
			{Count: 1, HourlyRate: decimal.RequireFromString("20.00"), Description: "One support worker"},
			{Count: 2, HourlyRate: decimal.RequireFromString("18.50"), Description: "Two support workers, per-worker rate"},
			{Count: 3, HourlyRate: decimal.RequireFromString("17.00"), Description: "Three support workers, per-worker rate"},
			{Count: 4, HourlyRate: decimal.RequireFromString("16.00"), Description: "Four support workers, per-worker rate"},
		},
		DistanceRatePerMile: decimal.RequireFromString("2.20"),
		PeakMultiplier:      decimal.RequireFromString("1.15"),
		MorningPeak:         HourWindow{Start: 6, End: 9},
		EveningPeak:         HourWindow{Start: 16, End: 19},
	}
}

// Validate checks the table for values no fare could sensibly be built from.
func (c PricingConfig) Validate() error {
	if c.BaseFare.IsNegative() {
		return fmt.Errorf("base fare must not be negative")
	}
	if c.DistanceRatePerMile.IsNegative() {
		return fmt.Errorf("distance rate per mile must not be negative")
	}
	if c.PeakMultiplier.LessThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("peak multiplier must be greater than 1, got %s", c.PeakMultiplier)
	}
	if err := validateWindow("morning", c.MorningPeak); err != nil {
		return err
	}
	if err := validateWindow("evening", c.EveningPeak); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.VehicleFeatures))
	for _, f := range c.VehicleFeatures {
		if f.ID == "" {
			return fmt.Errorf("vehicle feature id is required")
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate vehicle feature %q", f.ID)
		}
		seen[f.ID] = true
		if f.Surcharge.IsNegative() {
			return fmt.Errorf("vehicle feature %q has a negative surcharge", f.ID)
		}
	}

	if len(c.SupportWorkerTiers) != MaxSupportWorkers+1 {
		return fmt.Errorf("support worker tiers must cover counts 0..%d", MaxSupportWorkers)
	}
	covered := make(map[int]bool, len(c.SupportWorkerTiers))
	for _, tier := range c.SupportWorkerTiers {
		if tier.Count < 0 || tier.Count > MaxSupportWorkers || covered[tier.Count] {
			return fmt.Errorf("support worker tier count %d is invalid or repeated", tier.Count)
		}
		covered[tier.Count] = true
		if tier.HourlyRate.IsNegative() {
			return fmt.Errorf("support worker tier %d has a negative rate", tier.Count)
		}
	}

	return nil
}

func validateWindow(name string, w HourWindow) error {
	if w.Start < 0 || w.End > 24 || w.Start >= w.End {
		return fmt.Errorf("%s peak window [%d,%d) is invalid", name, w.Start, w.End)
	}
	return nil
}

func (c PricingConfig) clone() PricingConfig {
	out := c
	out.VehicleFeatures = append([]VehicleFeature(nil), c.VehicleFeatures...)
	out.SupportWorkerTiers = append([]SupportWorkerTier(nil), c.SupportWorkerTiers...)
	return out
}

func (c PricingConfig) tierRate(count int) (decimal.Decimal, bool) {
	for _, tier := range c.SupportWorkerTiers {
		if tier.Count == count {
			return tier.HourlyRate, true
		}
	}
	return decimal.Zero, false
}
