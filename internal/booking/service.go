package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/o.rides/internal/fare"
)

// CreateRequest is a booking as submitted by the booking-creation flow,
// after the route distance and duration have been resolved.
type CreateRequest struct {
	PassengerName   string
	PickupAddress   string
	DropoffAddress  string
	Notes           string
	FeatureIDs      []string
	SupportWorkers  int
	DistanceMiles   float64
	DurationMinutes float64
	PickupTime      time.Time
}

// Service quotes, records and completes bookings.
type Service struct {
	store *Store
	calc  *fare.Calculator
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store *Store, calc *fare.Calculator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, calc: calc, log: log, now: time.Now}
}

// WithClock replaces the service clock; tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	out := *s
	out.now = now
	out.calc = s.calc.WithClock(now)
	return &out
}

// Create validates the pickup time, quotes the journey and stores the booking.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Booking, error) {
	now := s.now()
	if err := ValidatePickupWindow(now, req.PickupTime); err != nil {
		return Booking{}, err
	}

	estimate, err := s.calc.Quote(fare.QuoteRequest{
		FeatureIDs:      req.FeatureIDs,
		SupportWorkers:  req.SupportWorkers,
		DistanceMiles:   req.DistanceMiles,
		DurationMinutes: req.DurationMinutes,
		BookingTime:     now,
		PickupTime:      req.PickupTime,
	})
	if err != nil {
		return Booking{}, fmt.Errorf("quote booking: %w", err)
	}

	b := Booking{
		ID:              uuid.NewString(),
		CreatedAt:       now,
		Status:          StatusBooked,
		PassengerName:   strings.TrimSpace(req.PassengerName),
		PickupAddress:   strings.TrimSpace(req.PickupAddress),
		DropoffAddress:  strings.TrimSpace(req.DropoffAddress),
		Notes:           strings.TrimSpace(req.Notes),
		BookingTime:     now,
		PickupTime:      req.PickupTime,
		DistanceMiles:   req.DistanceMiles,
		DurationMinutes: req.DurationMinutes,
		SupportWorkers:  req.SupportWorkers,
		Estimate:        estimate,
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return Booking{}, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("booking_type", string(estimate.BookingType.Type)),
		zap.Float64("lead_time_hours", estimate.BookingType.LeadTimeHours),
		zap.Bool("peak", estimate.Peak.IsPeak),
		zap.String("estimated_total", estimate.EstimatedTotal.String()),
	)
	return b, nil
}

// Complete reconciles the fare of a finished trip and stores it next to
// the original estimate.
func (s *Service) Complete(ctx context.Context, id string, actualDurationMinutes float64, tripEnd time.Time) (Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.Status == StatusCompleted {
		return Booking{}, ErrAlreadyCompleted
	}
	if tripEnd.IsZero() {
		tripEnd = s.now()
	}

	final, err := s.calc.Reconcile(b.Estimate, actualDurationMinutes, tripEnd)
	if err != nil {
		return Booking{}, fmt.Errorf("reconcile booking %s: %w", id, err)
	}

	if err := s.store.Complete(ctx, id, final, actualDurationMinutes, tripEnd); err != nil {
		return Booking{}, err
	}

	b.Status = StatusCompleted
	b.Final = &final
	b.CompletedAt = &tripEnd
	b.ActualDurationMinutes = &actualDurationMinutes

	s.log.Info("booking completed",
		zap.String("booking_id", id),
		zap.String("estimated_total", final.EstimatedTotal.String()),
		zap.String("actual_total", final.ActualTotal.Decimal.String()),
		zap.Int("billed_hours", final.SupportWorkers.BilledHours),
		zap.Bool("peak", final.Peak.IsPeak),
	)
	return b, nil
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	return s.store.Get(ctx, id)
}

// List returns bookings matching query.
func (s *Service) List(ctx context.Context, query string) ([]ListItem, error) {
	return s.store.List(ctx, strings.TrimSpace(query))
}

// Quote prices a journey without recording it. Pickup-window rules apply
// as they would for a real booking.
func (s *Service) Quote(req CreateRequest) (fare.Breakdown, error) {
	now := s.now()
	if err := ValidatePickupWindow(now, req.PickupTime); err != nil {
		return fare.Breakdown{}, err
	}
	return s.calc.Quote(fare.QuoteRequest{
		FeatureIDs:      req.FeatureIDs,
		SupportWorkers:  req.SupportWorkers,
		DistanceMiles:   req.DistanceMiles,
		DurationMinutes: req.DurationMinutes,
		BookingTime:     now,
		PickupTime:      req.PickupTime,
	})
}

// Rates exposes the rate table the service prices with.
func (s *Service) Rates() fare.PricingConfig {
	return s.calc.Config()
}
