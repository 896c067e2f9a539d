package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	billingMonthLayout = "2006-01"
	dateLayout         = "2006-01-02"
)

// ParseBillingMonth validates a YYYY-MM billing month key and returns the
// first day of that month in loc.
func ParseBillingMonth(month string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(billingMonthLayout, month, loc)
	if err != nil || t.Format(billingMonthLayout) != month {
		return time.Time{}, ErrInvalidBillingMonth
	}
	return t, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, NewError(ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// BillingMonthOf returns the YYYY-MM key for t.
func BillingMonthOf(t time.Time) string {
	return t.Format(billingMonthLayout)
}

// DefaultDueDate returns the given day of the billing month, clamped to the
// last day of that month.
func DefaultDueDate(monthStart time.Time, day int) time.Time {
	if day < 1 {
		day = 1
	}
	last := time.Date(monthStart.Year(), monthStart.Month()+1, 0, 0, 0, 0, 0, monthStart.Location()).Day()
	if day > last {
		day = last
	}
	return time.Date(monthStart.Year(), monthStart.Month(), day, 0, 0, 0, 0, monthStart.Location())
}

// TrailingMonths returns n billing month keys ending with the month of now,
// oldest first.
func TrailingMonths(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, BillingMonthOf(first.AddDate(0, -i, 0)))
	}
	return months
}

var externalIDPattern = regexp.MustCompile(`^INV-(\d+)-`)

// FormatExternalID builds the reference sent to the payment gateway.
// The local invoice id is embedded so the webhook can find the invoice again.
func FormatExternalID(invoiceID uint, at time.Time) string {
	return fmt.Sprintf("INV-%d-%d", invoiceID, at.UnixMilli())
}

// ParseExternalID extracts the local invoice id from a gateway external id.
func ParseExternalID(externalID string) (uint, error) {
	m := externalIDPattern.FindStringSubmatch(externalID)
	if m == nil {
		return 0, ErrInvalidExternalID
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidExternalID
	}
	return uint(id), nil
}
