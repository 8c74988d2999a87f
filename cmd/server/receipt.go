package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/o.rides/internal/booking"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/money"
)

const receiptTimeLayout = "Mon 2 Jan 2006 15:04 MST"

// writeReceipt renders the plain-text itemized receipt of a booking. Completed
// bookings list the reconciled fare after the estimate.
func writeReceipt(w io.Writer, b booking.Booking, loc *time.Location) error {
	var sb strings.Builder

	fmt.Fprintln(&sb, "o.rides fare receipt")
	fmt.Fprintf(&sb, "Booking:    %s\n", b.ID)
	fmt.Fprintf(&sb, "Status:     %s\n", b.Status)
	if b.PassengerName != "" {
		fmt.Fprintf(&sb, "Passenger:  %s\n", b.PassengerName)
	}
	fmt.Fprintf(&sb, "Pickup:     %s\n", localTime(b.PickupTime, loc).Format(receiptTimeLayout))
	if b.PickupAddress != "" {
		fmt.Fprintf(&sb, "From:       %s\n", b.PickupAddress)
	}
	if b.DropoffAddress != "" {
		fmt.Fprintf(&sb, "To:         %s\n", b.DropoffAddress)
	}
	fmt.Fprintf(&sb, "Booked:     %s (%s, %.1fh ahead)\n",
		localTime(b.BookingTime, loc).Format(receiptTimeLayout),
		b.Estimate.BookingType.Type,
		b.Estimate.BookingType.LeadTimeHours,
	)

	fmt.Fprintln(&sb)
	fmt.Fprintln(&sb, "Estimate")
	writeFareLines(&sb, b.Estimate)
	receiptLine(&sb, "Estimated total", b.Estimate.EstimatedTotal)

	if b.Final != nil && b.Final.IsReconciled() {
		actual := b.Final.ActualTotal.Decimal

		fmt.Fprintln(&sb)
		if b.CompletedAt != nil {
			fmt.Fprintf(&sb, "Final (trip ended %s)\n", localTime(*b.CompletedAt, loc).Format(receiptTimeLayout))
		} else {
			fmt.Fprintln(&sb, "Final")
		}
		writeFareLines(&sb, *b.Final)
		receiptLine(&sb, "Actual total", actual)
		fmt.Fprintf(&sb, "  %-44s %12s\n", "Difference from estimate", signedAmount(actual.Sub(b.Estimate.EstimatedTotal)))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeFareLines(sb *strings.Builder, bd fare.Breakdown) {
	receiptLine(sb, "Base fare", bd.BaseFare)
	for _, f := range bd.VehicleFeatures {
		receiptLine(sb, f.Name, f.Price)
	}
	if sw := bd.SupportWorkers; sw.Count > 0 {
		receiptLine(sb, fmt.Sprintf("Support workers (%d x %dh @ %s)", sw.Count, sw.BilledHours, money.Format(sw.HourlyRate)), sw.TotalCost)
	}
	receiptLine(sb, fmt.Sprintf("Distance (%s mi @ %s)", bd.Distance.Miles.String(), money.Format(bd.Distance.RatePerMile)), bd.Distance.TotalCost)

	totals := bd.Totals()
	receiptLine(sb, "Subtotal", totals.Subtotal)
	if !totals.Adjustment.IsZero() {
		fmt.Fprintf(sb, "  %-44s %12s\n",
			fmt.Sprintf("%s booking (x%s)", titleCase(string(bd.BookingType.Type)), bd.BookingType.Multiplier.String()),
			signedAmount(totals.Adjustment),
		)
	}
	if bd.Peak.IsPeak {
		receiptLine(sb, fmt.Sprintf("Peak time (x%s)", bd.Peak.Multiplier.String()), bd.Peak.Surcharge)
	}
}

func receiptLine(sb *strings.Builder, label string, amount decimal.Decimal) {
	fmt.Fprintf(sb, "  %-44s %12s\n", label, money.Format(amount))
}

func signedAmount(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + money.Format(amount)
	}
	return money.Format(amount)
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
