package fare

import "github.com/shopspring/decimal"

// PeakLine records the peak decision and the surcharge it produced.
type PeakLine struct {
	IsPeak     bool            `json:"is_peak"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Surcharge  decimal.Decimal `json:"surcharge"`
}

// Breakdown is the itemized price of one booking. ActualTotal stays null
// until the trip has been reconciled.
type Breakdown struct {
	BaseFare        decimal.Decimal     `json:"base_fare"`
	VehicleFeatures []FeatureLine       `json:"vehicle_features"`
	SupportWorkers  SupportWorkerLine   `json:"support_workers"`
	Distance        DistanceLine        `json:"distance"`
	Peak            PeakLine            `json:"peak"`
	BookingType     Classification      `json:"booking_type"`
	EstimatedTotal  decimal.Decimal     `json:"estimated_total"`
	ActualTotal     decimal.NullDecimal `json:"actual_total"`
}

// Totals holds the intermediate figures of one totalization pass.
type Totals struct {
	Subtotal         decimal.Decimal
	AfterBookingType decimal.Decimal
	Adjustment       decimal.Decimal
	PeakSurcharge    decimal.Decimal
	Total            decimal.Decimal
}

// Summary is the flattened view of a breakdown kept for reporting.
type Summary struct {
	BaseFare            decimal.Decimal `json:"base_fare"`
	DistanceCost        decimal.Decimal `json:"distance_cost"`
	VehicleFeaturesCost decimal.Decimal `json:"vehicle_features_cost"`
	SupportWorkersCost  decimal.Decimal `json:"support_workers_cost"`
	PeakTimeSurcharge   decimal.Decimal `json:"peak_time_surcharge"`
	BookingType         BookingType     `json:"booking_type"`
	IsEstimated         bool            `json:"is_estimated"`
	Total               decimal.Decimal `json:"total"`
}

// Totalize combines a classification, the priced lines and the peak
// evaluation into a breakdown. The booking-type multiplier applies to the
// subtotal first; the peak surcharge is then taken on that adjusted amount.
func Totalize(cls Classification, lines Lines, peak PeakEvaluation) Breakdown {
	totals := computeTotals(lines.Subtotal(), cls.Multiplier, peak)
	cls.Adjustment = totals.Adjustment

	return Breakdown{
		BaseFare:        lines.BaseFare,
		VehicleFeatures: cloneFeatures(lines.Features),
		SupportWorkers:  lines.SupportWorkers,
		Distance:        lines.Distance,
		Peak: PeakLine{
			IsPeak:     peak.IsPeak,
			Multiplier: peak.Multiplier,
			Surcharge:  totals.PeakSurcharge,
		},
		BookingType:    cls,
		EstimatedTotal: totals.Total,
	}
}

func computeTotals(subtotal, bookingMultiplier decimal.Decimal, peak PeakEvaluation) Totals {
	afterBookingType := subtotal.Mul(bookingMultiplier)

	surcharge := decimal.Zero
	if peak.IsPeak {
		surcharge = afterBookingType.Mul(peak.Multiplier.Sub(decimal.NewFromInt(1)))
	}

	return Totals{
		Subtotal:         subtotal,
		AfterBookingType: afterBookingType,
		Adjustment:       afterBookingType.Sub(subtotal),
		PeakSurcharge:    surcharge,
		Total:            afterBookingType.Add(surcharge),
	}
}

// Lines returns the priced line items the breakdown was built from.
func (b Breakdown) Lines() Lines {
	return Lines{
		BaseFare:       b.BaseFare,
		Features:       cloneFeatures(b.VehicleFeatures),
		SupportWorkers: b.SupportWorkers,
		Distance:       b.Distance,
	}
}

// Totals recomputes the intermediate figures behind the breakdown's
// current line items and peak decision.
func (b Breakdown) Totals() Totals {
	return computeTotals(b.Lines().Subtotal(), b.BookingType.Multiplier, PeakEvaluation{
		IsPeak:     b.Peak.IsPeak,
		Multiplier: b.Peak.Multiplier,
	})
}

// IsReconciled reports whether an actual total has been recorded.
func (b Breakdown) IsReconciled() bool {
	return b.ActualTotal.Valid
}

// FinalTotal is the actual total once reconciled, otherwise the estimate.
func (b Breakdown) FinalTotal() decimal.Decimal {
	if b.ActualTotal.Valid {
		return b.ActualTotal.Decimal
	}
	return b.EstimatedTotal
}

// Summary flattens the breakdown into the reporting columns.
func (b Breakdown) Summary() Summary {
	features := decimal.Zero
	for _, f := range b.VehicleFeatures {
		features = features.Add(f.Price)
	}

	return Summary{
		BaseFare:            b.BaseFare,
		DistanceCost:        b.Distance.TotalCost,
		VehicleFeaturesCost: features,
		SupportWorkersCost:  b.SupportWorkers.TotalCost,
		PeakTimeSurcharge:   b.Peak.Surcharge,
		BookingType:         b.BookingType.Type,
		IsEstimated:         !b.ActualTotal.Valid,
		Total:               b.FinalTotal(),
	}
}

func cloneFeatures(in []FeatureLine) []FeatureLine {
	if in == nil {
		return []FeatureLine{}
	}
	return append(make([]FeatureLine, 0, len(in)), in...)
}
