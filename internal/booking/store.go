package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/o.rides/internal/db"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/money"
)

// Fixed-width UTC timestamps so stored values sort as text. Reads accept any
// RFC 3339 form.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists bookings in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Insert writes a new booking with its estimate.
func (s *Store) Insert(ctx context.Context, b Booking) error {
	estimateJSON, err := json.Marshal(b.Estimate)
	if err != nil {
		return fmt.Errorf("encode estimate: %w", err)
	}
	sum := b.Estimate.Summary()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, created_at, updated_at, status,
			passenger_name, pickup_address, dropoff_address, notes,
			booking_time, pickup_time, distance_miles, duration_minutes, support_workers,
			estimate_json,
			base_fare_pence, distance_cost_pence, vehicle_features_cost_pence,
			support_workers_cost_pence, peak_time_surcharge_pence,
			booking_type, is_estimated, estimated_total_pence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, formatTime(b.CreatedAt), formatTime(time.Now()), string(b.Status),
		b.PassengerName, b.PickupAddress, b.DropoffAddress, b.Notes,
		formatTime(b.BookingTime), formatTime(b.PickupTime), b.DistanceMiles, b.DurationMinutes, b.SupportWorkers,
		string(estimateJSON),
		money.Pence(sum.BaseFare), money.Pence(sum.DistanceCost), money.Pence(sum.VehicleFeaturesCost),
		money.Pence(sum.SupportWorkersCost), money.Pence(sum.PeakTimeSurcharge),
		string(sum.BookingType), sum.IsEstimated, money.Pence(b.Estimate.EstimatedTotal),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// Get loads one booking by id.
func (s *Store) Get(ctx context.Context, id string) (Booking, error) {
	var (
		b                       Booking
		status, createdAt       string
		bookingTime, pickupTime string
		estimateJSON            string
		finalJSON, completedAt  sql.NullString
		actualDuration          sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id, created_at, status,
			passenger_name, pickup_address, dropoff_address, notes,
			booking_time, pickup_time, distance_miles, duration_minutes, support_workers,
			estimate_json, final_json, completed_at, actual_duration_minutes
		FROM bookings
		WHERE id = ?
	`, id).Scan(
		&b.ID, &createdAt, &status,
		&b.PassengerName, &b.PickupAddress, &b.DropoffAddress, &b.Notes,
		&bookingTime, &pickupTime, &b.DistanceMiles, &b.DurationMinutes, &b.SupportWorkers,
		&estimateJSON, &finalJSON, &completedAt, &actualDuration,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("query booking: %w", err)
	}

	b.Status = Status(status)
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return Booking{}, err
	}
	if b.BookingTime, err = parseTime(bookingTime); err != nil {
		return Booking{}, err
	}
	if b.PickupTime, err = parseTime(pickupTime); err != nil {
		return Booking{}, err
	}
	if err := json.Unmarshal([]byte(estimateJSON), &b.Estimate); err != nil {
		return Booking{}, fmt.Errorf("decode estimate: %w", err)
	}

	if finalJSON.Valid {
		var final fare.Breakdown
		if err := json.Unmarshal([]byte(finalJSON.String), &final); err != nil {
			return Booking{}, fmt.Errorf("decode final breakdown: %w", err)
		}
		b.Final = &final
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return Booking{}, err
		}
		b.CompletedAt = &t
	}
	if actualDuration.Valid {
		d := actualDuration.Float64
		b.ActualDurationMinutes = &d
	}

	return b, nil
}

// List returns bookings newest pickup first, optionally filtered by a
// substring of the passenger name, addresses or notes.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, created_at, pickup_time, passenger_name, status, booking_type, is_estimated,
			COALESCE(actual_total_pence, estimated_total_pence)
		FROM bookings
		WHERE (? = '' OR passenger_name LIKE ? OR pickup_address LIKE ? OR dropoff_address LIKE ? OR notes LIKE ?)
		ORDER BY pickup_time DESC, id DESC
	`, query, search, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var (
			item                  ListItem
			createdAt, pickupTime string
			status, bookingType   string
			totalPence            int64
		)
		if err := rows.Scan(&item.ID, &createdAt, &pickupTime, &item.PassengerName, &status, &bookingType, &item.IsEstimated, &totalPence); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if item.PickupTime, err = parseTime(pickupTime); err != nil {
			return nil, err
		}
		item.Status = Status(status)
		item.BookingType = fare.BookingType(bookingType)
		item.Total = money.FromPence(totalPence)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return items, nil
}

// Complete stores the reconciled fare of a booked trip. A booking can only
// be completed once.
func (s *Store) Complete(ctx context.Context, id string, final fare.Breakdown, actualDurationMinutes float64, completedAt time.Time) error {
	finalJSON, err := json.Marshal(final)
	if err != nil {
		return fmt.Errorf("encode final breakdown: %w", err)
	}
	sum := final.Summary()

	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query booking status: %w", err)
		}
		if Status(status) == StatusCompleted {
			return ErrAlreadyCompleted
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET
				status = ?,
				updated_at = CURRENT_TIMESTAMP,
				completed_at = ?,
				actual_duration_minutes = ?,
				final_json = ?,
				support_workers_cost_pence = ?,
				peak_time_surcharge_pence = ?,
				is_estimated = ?,
				actual_total_pence = ?
			WHERE id = ? AND status = ?
		`,
			string(StatusCompleted), formatTime(completedAt),
			actualDurationMinutes, string(finalJSON),
			money.Pence(sum.SupportWorkersCost), money.Pence(sum.PeakTimeSurcharge),
			sum.IsEstimated, money.Pence(sum.Total),
			id, string(StatusBooked),
		)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		return nil
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}
