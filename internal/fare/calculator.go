package fare

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest describes a journey to be priced. A zero BookingTime means
// the booking is being made now.
type QuoteRequest struct {
	FeatureIDs      []string
	SupportWorkers  int
	DistanceMiles   float64
	DurationMinutes float64
	BookingTime     time.Time
	PickupTime      time.Time
}

// Calculator prices journeys against a fixed rate table. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	cfg PricingConfig
	now func() time.Time
}

// NewCalculator validates cfg and returns a Calculator bound to a private copy of it.
func NewCalculator(cfg PricingConfig) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate pricing config: %w", err)
	}
	return &Calculator{cfg: cfg.clone(), now: time.Now}, nil
}

// WithClock returns a copy of the calculator that reads the current time from now.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	out := *c
	out.now = now
	return &out
}

// Config returns a copy of the rate table in use.
func (c *Calculator) Config() PricingConfig {
	return c.cfg.clone()
}

// Quote prices a journey at booking time.
func (c *Calculator) Quote(req QuoteRequest) (Breakdown, error) {
	bookingTime := req.BookingTime
	if bookingTime.IsZero() {
		bookingTime = c.now()
	}

	cls, err := Classify(bookingTime, req.PickupTime)
	if err != nil {
		return Breakdown{}, err
	}

	lines, err := c.Compose(LineItemRequest{
		FeatureIDs:      req.FeatureIDs,
		SupportWorkers:  req.SupportWorkers,
		DistanceMiles:   req.DistanceMiles,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return Breakdown{}, err
	}

	return Totalize(cls, lines, c.EvaluatePeak(req.PickupTime)), nil
}

// Reconcile reprices a completed trip from its actual duration and end
// time. Only the support-worker line and the peak decision are rederived;
// the booking type keeps its original multiplier. The estimate is left
// untouched and a new breakdown carrying ActualTotal is returned.
func (c *Calculator) Reconcile(estimate Breakdown, actualDurationMinutes float64, tripEnd time.Time) (Breakdown, error) {
	if estimate.IsReconciled() {
		return Breakdown{}, ErrAlreadyReconciled
	}
	if err := validateDuration(actualDurationMinutes); err != nil {
		return Breakdown{}, err
	}

	prev := estimate.SupportWorkers
	if prev.Count < 0 || prev.Count > MaxSupportWorkers {
		return Breakdown{}, fmt.Errorf("%w: support worker count %d outside 0..%d", ErrInvalidInput, prev.Count, MaxSupportWorkers)
	}

	workers := newSupportWorkerLine(prev.Count, BilledHours(actualDurationMinutes), prev.HourlyRate)
	peak := c.EvaluatePeak(tripEnd)
	lines := estimate.Lines()
	lines.SupportWorkers = workers
	totals := computeTotals(lines.Subtotal(), estimate.BookingType.Multiplier, peak)

	final := estimate
	final.VehicleFeatures = lines.Features
	final.SupportWorkers = workers
	final.Peak = PeakLine{
		IsPeak:     peak.IsPeak,
		Multiplier: peak.Multiplier,
		Surcharge:  totals.PeakSurcharge,
	}
	final.ActualTotal = decimal.NewNullDecimal(totals.Total)
	return final, nil
}
