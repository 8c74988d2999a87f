package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Simplici0/o.rides/internal/booking"
)

const maxRequestBody = 1 << 20

type bookingRequestBody struct {
	PassengerName   string   `json:"passenger_name"`
	PickupAddress   string   `json:"pickup_address"`
	DropoffAddress  string   `json:"dropoff_address"`
	Notes           string   `json:"notes"`
	Features        []string `json:"features"`
	SupportWorkers  int      `json:"support_workers"`
	DistanceMiles   float64  `json:"distance_miles"`
	DurationMinutes float64  `json:"duration_minutes"`
	PickupTime      string   `json:"pickup_time"`
}

type completeRequestBody struct {
	ActualDurationMinutes *float64 `json:"actual_duration_minutes"`
	TripEnd               string   `json:"trip_end"`
}

type completeRequest struct {
	ActualDurationMinutes float64
	TripEnd               time.Time
}

func decodeBookingRequest(r *http.Request) (booking.CreateRequest, error) {
	var body bookingRequestBody
	if err := decodeJSONBody(r, &body); err != nil {
		return booking.CreateRequest{}, err
	}

	pickup, err := parseTimestamp(body.PickupTime, "pickup_time")
	if err != nil {
		return booking.CreateRequest{}, err
	}
	if pickup.IsZero() {
		return booking.CreateRequest{}, fmt.Errorf("pickup_time is required")
	}

	features := make([]string, 0, len(body.Features))
	for _, id := range body.Features {
		id = strings.TrimSpace(id)
		if id != "" {
			features = append(features, id)
		}
	}

	return booking.CreateRequest{
		PassengerName:   body.PassengerName,
		PickupAddress:   body.PickupAddress,
		DropoffAddress:  body.DropoffAddress,
		Notes:           body.Notes,
		FeatureIDs:      features,
		SupportWorkers:  body.SupportWorkers,
		DistanceMiles:   body.DistanceMiles,
		DurationMinutes: body.DurationMinutes,
		PickupTime:      pickup,
	}, nil
}

func decodeCompleteRequest(r *http.Request) (completeRequest, error) {
	var body completeRequestBody
	if err := decodeJSONBody(r, &body); err != nil {
		return completeRequest{}, err
	}
	if body.ActualDurationMinutes == nil {
		return completeRequest{}, fmt.Errorf("actual_duration_minutes is required")
	}

	tripEnd, err := parseTimestamp(body.TripEnd, "trip_end")
	if err != nil {
		return completeRequest{}, err
	}

	return completeRequest{
		ActualDurationMinutes: *body.ActualDurationMinutes,
		TripEnd:               tripEnd,
	}, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// parseTimestamp accepts RFC 3339; an empty value yields the zero time.
func parseTimestamp(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp", field)
	}
	return t, nil
}
