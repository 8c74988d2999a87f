package booking

import (
	"fmt"
	"time"
)

const (
	minPickupNotice = 30 * time.Minute
	pickupSlot      = 15 * time.Minute
	maxPickupAhead  = 10 * 24 * time.Hour
)

// PickupWindow returns the earliest and latest pickup a booking made at now
// may request. The earliest pickup is half an hour out, rounded up to the
// next quarter hour.
func PickupWindow(now time.Time) (earliest, latest time.Time) {
	earliest = now.Add(minPickupNotice)
	if rounded := earliest.Truncate(pickupSlot); !rounded.Equal(earliest) {
		earliest = rounded.Add(pickupSlot)
	}
	return earliest, now.Add(maxPickupAhead)
}

// ValidatePickupWindow rejects a pickup outside PickupWindow(now).
func ValidatePickupWindow(now, pickup time.Time) error {
	earliest, latest := PickupWindow(now)
	if pickup.Before(earliest) || pickup.After(latest) {
		return fmt.Errorf("%w: %s is not between %s and %s", ErrPickupOutsideWindow,
			pickup.Format(time.RFC3339), earliest.Format(time.RFC3339), latest.Format(time.RFC3339))
	}
	return nil
}
