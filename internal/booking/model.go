// Package booking stores bookings together with their fare breakdowns and
// runs the booking-creation and trip-completion flows around the fare engine.
package booking

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/o.rides/internal/fare"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrAlreadyCompleted    = errors.New("booking already completed")
	ErrPickupOutsideWindow = errors.New("pickup time outside bookable window")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
)

// Booking is a persisted booking with its quoted and, once the trip is
// done, reconciled fare.
type Booking struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Status         Status    `json:"status"`
	PassengerName  string    `json:"passenger_name"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	Notes          string    `json:"notes"`

	BookingTime     time.Time `json:"booking_time"`
	PickupTime      time.Time `json:"pickup_time"`
	DistanceMiles   float64   `json:"distance_miles"`
	DurationMinutes float64   `json:"duration_minutes"`
	SupportWorkers  int       `json:"support_workers"`

	Estimate fare.Breakdown  `json:"estimate"`
	Final    *fare.Breakdown `json:"final,omitempty"`

	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	ActualDurationMinutes *float64   `json:"actual_duration_minutes,omitempty"`
}

// Breakdown is the most recent fare: the reconciled one when the trip is
// complete, otherwise the estimate.
func (b Booking) Breakdown() fare.Breakdown {
	if b.Final != nil {
		return *b.Final
	}
	return b.Estimate
}

// ListItem is the row shape of the bookings overview.
type ListItem struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	PickupTime    time.Time        `json:"pickup_time"`
	PassengerName string           `json:"passenger_name"`
	Status        Status           `json:"status"`
	BookingType   fare.BookingType `json:"booking_type"`
	IsEstimated   bool             `json:"is_estimated"`
	Total         decimal.Decimal  `json:"total"`
}
