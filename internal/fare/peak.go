package fare

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeakEvaluation says whether an instant falls in a peak window.
// Multiplier is the configured peak rate whichever window matched.
type PeakEvaluation struct {
	IsPeak     bool
	Multiplier decimal.Decimal
}

// EvaluatePeak checks the hour of t against the morning and evening windows.
// Only the hour of day counts; date and minutes are ignored.
func (c *Calculator) EvaluatePeak(t time.Time) PeakEvaluation {
	if c.cfg.Location != nil {
		t = t.In(c.cfg.Location)
	}
	hour := t.Hour()
	return PeakEvaluation{
		IsPeak:     c.cfg.MorningPeak.Contains(hour) || c.cfg.EveningPeak.Contains(hour),
		Multiplier: c.cfg.PeakMultiplier,
	}
}
