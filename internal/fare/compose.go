package fare

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LineItemRequest carries the journey facts the line items are priced from.
type LineItemRequest struct {
	FeatureIDs      []string
	SupportWorkers  int
	DistanceMiles   float64
	DurationMinutes float64
}

// FeatureLine is one selected vehicle feature and its surcharge.
type FeatureLine struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// SupportWorkerLine prices the support workers for the whole trip.
type SupportWorkerLine struct {
	Count       int             `json:"count"`
	BilledHours int             `json:"billed_hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// DistanceLine prices the route distance.
type DistanceLine struct {
	Miles       decimal.Decimal `json:"miles"`
	RatePerMile decimal.Decimal `json:"rate_per_mile"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// Lines groups every priced component that feeds the subtotal.
type Lines struct {
	BaseFare       decimal.Decimal
	Features       []FeatureLine
	SupportWorkers SupportWorkerLine
	Distance       DistanceLine
}

// Subtotal sums the lines before any booking-type or peak adjustment.
func (l Lines) Subtotal() decimal.Decimal {
	subtotal := l.BaseFare
	for _, f := range l.Features {
		subtotal = subtotal.Add(f.Price)
	}
	return subtotal.Add(l.SupportWorkers.TotalCost).Add(l.Distance.TotalCost)
}

// MaxDurationMinutes is the longest trip duration a fare can be priced for.
const MaxDurationMinutes = 7 * 24 * 60

// BilledHours is the support-worker charge duration. Every trip bills at
// least one hour; partial hours round up. Durations are expected to have
// passed validation; anything above MaxDurationMinutes bills the maximum.
func BilledHours(durationMinutes float64) int {
	if durationMinutes > MaxDurationMinutes {
		return MaxDurationMinutes / 60
	}
	hours := int(math.Ceil(durationMinutes / 60))
	if hours < 1 {
		return 1
	}
	return hours
}

// Compose prices each line item of a journey against the rate table.
// Feature ids missing from the catalog are skipped.
func (c *Calculator) Compose(req LineItemRequest) (Lines, error) {
	if err := validateDistance(req.DistanceMiles); err != nil {
		return Lines{}, err
	}

	workers, err := c.supportWorkerLine(req.SupportWorkers, req.DurationMinutes)
	if err != nil {
		return Lines{}, err
	}

	miles := decimal.NewFromFloat(req.DistanceMiles)
	return Lines{
		BaseFare:       c.cfg.BaseFare,
		Features:       c.featureLines(req.FeatureIDs),
		SupportWorkers: workers,
		Distance: DistanceLine{
			Miles:       miles,
			RatePerMile: c.cfg.DistanceRatePerMile,
			TotalCost:   miles.Mul(c.cfg.DistanceRatePerMile),
		},
	}, nil
}

func (c *Calculator) featureLines(ids []string) []FeatureLine {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	lines := make([]FeatureLine, 0, len(selected))
	for _, f := range c.cfg.VehicleFeatures {
		if selected[f.ID] {
			lines = append(lines, FeatureLine{ID: f.ID, Name: f.Name, Price: f.Surcharge})
		}
	}
	return lines
}

// supportWorkerLine charges the tier's per-worker rate to every worker in
// the booking, so the tier discount and the head count both apply.
func (c *Calculator) supportWorkerLine(count int, durationMinutes float64) (SupportWorkerLine, error) {
	if count < 0 || count > MaxSupportWorkers {
		return SupportWorkerLine{}, fmt.Errorf("%w: support worker count %d outside 0..%d", ErrInvalidInput, count, MaxSupportWorkers)
	}
	if err := validateDuration(durationMinutes); err != nil {
		return SupportWorkerLine{}, err
	}

	rate, ok := c.cfg.tierRate(count)
	if !ok {
		return SupportWorkerLine{}, fmt.Errorf("%w: no support worker tier for count %d", ErrInvalidInput, count)
	}

	return newSupportWorkerLine(count, BilledHours(durationMinutes), rate), nil
}

func newSupportWorkerLine(count, hours int, rate decimal.Decimal) SupportWorkerLine {
	total := decimal.Zero
	if count > 0 {
		total = decimal.NewFromInt(int64(hours)).Mul(rate).Mul(decimal.NewFromInt(int64(count)))
	}
	return SupportWorkerLine{
		Count:       count,
		BilledHours: hours,
		HourlyRate:  rate,
		TotalCost:   total,
	}
}

func validateDistance(miles float64) error {
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return fmt.Errorf("%w: distance %v miles must be a non-negative number", ErrInvalidInput, miles)
	}
	return nil
}

func validateDuration(minutes float64) error {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return fmt.Errorf("%w: duration %v minutes must be a non-negative number", ErrInvalidInput, minutes)
	}
	if minutes > MaxDurationMinutes {
		return fmt.Errorf("%w: duration %v minutes exceeds the %d minute limit", ErrInvalidInput, minutes, MaxDurationMinutes)
	}
	return nil
}
