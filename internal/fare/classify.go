package fare

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookingType tags a booking by how far ahead of pickup it was made.
type BookingType string

const (
	BookingImmediate BookingType = "immediate"
	BookingScheduled BookingType = "scheduled"
	BookingAdvance   BookingType = "advance"
)

// Lead-time thresholds in hours. A booking exactly three hours out is
// already scheduled; one exactly twelve hours out is still scheduled.
const (
	scheduledMinLeadHours = 3.0
	scheduledMaxLeadHours = 12.0
)

var (
	immediateMultiplier = decimal.RequireFromString("1.5")
	scheduledMultiplier = decimal.NewFromInt(1)
	advanceMultiplier   = decimal.RequireFromString("0.9")
)

// Classification is the booking-type outcome for one booking.
// Adjustment stays zero until the subtotal is known.
type Classification struct {
	Type          BookingType     `json:"type"`
	LeadTimeHours float64         `json:"lead_time_hours"`
	Multiplier    decimal.Decimal `json:"multiplier"`
	Adjustment    decimal.Decimal `json:"adjustment"`
}

// Classify derives the booking type from the moment the booking was made
// and the requested pickup.
func Classify(bookingTime, pickupTime time.Time) (Classification, error) {
	if pickupTime.Before(bookingTime) {
		return Classification{}, fmt.Errorf("%w: pickup %s is before booking time %s",
			ErrInvalidInput, pickupTime.Format(time.RFC3339), bookingTime.Format(time.RFC3339))
	}
	return ClassifyLeadTime(pickupTime.Sub(bookingTime).Hours())
}

// ClassifyLeadTime maps a lead time in hours onto a booking type.
func ClassifyLeadTime(leadTimeHours float64) (Classification, error) {
	if leadTimeHours < 0 {
		return Classification{}, fmt.Errorf("%w: lead time %.2fh is negative", ErrInvalidInput, leadTimeHours)
	}

	cls := Classification{LeadTimeHours: leadTimeHours, Adjustment: decimal.Zero}
	switch {
	case leadTimeHours < scheduledMinLeadHours:
		cls.Type, cls.Multiplier = BookingImmediate, immediateMultiplier
	case leadTimeHours <= scheduledMaxLeadHours:
		cls.Type, cls.Multiplier = BookingScheduled, scheduledMultiplier
	default:
		cls.Type, cls.Multiplier = BookingAdvance, advanceMultiplier
	}
	return cls, nil
}
