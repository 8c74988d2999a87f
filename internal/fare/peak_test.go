package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePeak_HalfOpenWindows(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		hour, minute int
		want         bool
	}{
		{5, 59, false},
		{6, 0, true},
		{8, 59, true},
		{9, 0, false},
		{14, 0, false},
		{15, 59, false},
		{16, 0, true},
		{18, 30, true},
		{19, 0, false},
		{23, 0, false},
	}

	for _, tt := range tests {
		at := time.Date(2026, 5, 11, tt.hour, tt.minute, 0, 0, time.UTC)
		got := calc.EvaluatePeak(at)
		assert.Equal(t, tt.want, got.IsPeak, "at %02d:%02d", tt.hour, tt.minute)
		assertMoney(t, "1.15", got.Multiplier)
	}
}

func TestEvaluatePeak_ReadsHourInConfiguredLocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = time.FixedZone("UTC+1", 60*60)
	calc, err := NewCalculator(cfg)
	require.NoError(t, err)

	// 05:30 UTC is 06:30 in the configured zone.
	at := time.Date(2026, 7, 1, 5, 30, 0, 0, time.UTC)
	assert.True(t, calc.EvaluatePeak(at).IsPeak)

	utc := newTestCalculator(t)
	assert.False(t, utc.EvaluatePeak(at).IsPeak)
}
