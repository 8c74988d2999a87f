package fare

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLeadTime_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		wantType BookingType
		wantMult string
	}{
		{name: "zero lead time", hours: 0, wantType: BookingImmediate, wantMult: "1.5"},
		{name: "just under three hours", hours: 2.99, wantType: BookingImmediate, wantMult: "1.5"},
		{name: "exactly three hours", hours: 3.0, wantType: BookingScheduled, wantMult: "1"},
		{name: "mid scheduled", hours: 7.5, wantType: BookingScheduled, wantMult: "1"},
		{name: "exactly twelve hours", hours: 12.0, wantType: BookingScheduled, wantMult: "1"},
		{name: "just over twelve hours", hours: 12.01, wantType: BookingAdvance, wantMult: "0.9"},
		{name: "days ahead", hours: 240, wantType: BookingAdvance, wantMult: "0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyLeadTime(tt.hours)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assertMoney(t, tt.wantMult, got.Multiplier)
			assert.Equal(t, tt.hours, got.LeadTimeHours)
			assert.True(t, got.Adjustment.IsZero(), "classifier must not price the adjustment")
		})
	}
}

func TestClassify_UsesBookingMomentNotEvaluationTime(t *testing.T) {
	booked := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pickup := booked.Add(90 * time.Minute)

	got, err := Classify(booked, pickup)
	require.NoError(t, err)
	assert.Equal(t, BookingImmediate, got.Type)
	assert.InDelta(t, 1.5, got.LeadTimeHours, 1e-9)
}

func TestClassify_PickupBeforeBookingIsRejected(t *testing.T) {
	booked := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := Classify(booked, booked.Add(-time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = ClassifyLeadTime(-0.5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
