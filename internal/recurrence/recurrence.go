// Package recurrence computes next-occurrence dates for recurring
// transactions and decides on which days a template materializes.
package recurrence

import (
	"time"

	apperrors "finara/internal/errors"
	"finara/internal/models"
)

// Next returns the occurrence following base for interval. Monthly and
// yearly steps keep the day-of-month when the target month has it and clamp
// to the month's last day otherwise (Jan 31 -> Feb 29 in a leap year).
func Next(base time.Time, interval models.RecurringInterval) (time.Time, error) {
	switch interval {
	case models.RecurringIntervalDaily:
		return base.AddDate(0, 0, 1), nil
	case models.RecurringIntervalWeekly:
		return base.AddDate(0, 0, 7), nil
	case models.RecurringIntervalMonthly:
		return addMonthsClamped(base, 1), nil
	case models.RecurringIntervalYearly:
		return addMonthsClamped(base, 12), nil
	default:
		return time.Time{}, apperrors.ErrInvalidInterval
	}
}

// NextAfter applies the stale-base guard: when Next(base) has already
// passed at now, the occurrence is recomputed from now instead, so the
// stored date is never in the past at the moment it is computed.
func NextAfter(base, now time.Time, interval models.RecurringInterval) (time.Time, error) {
	next, err := Next(base, interval)
	if err != nil {
		return time.Time{}, err
	}
	if next.Before(now) {
		return Next(now, interval)
	}
	return next, nil
}

// OccursOn reports whether a template anchored at anchor materializes on
// day. Only the date part of both values is compared. Yearly and unknown
// intervals never materialize.
func OccursOn(anchor, day time.Time, interval models.RecurringInterval) bool {
	switch interval {
	case models.RecurringIntervalDaily:
		return true
	case models.RecurringIntervalWeekly:
		return anchor.Weekday() == day.Weekday()
	case models.RecurringIntervalMonthly:
		return anchor.Day() == day.Day()
	default:
		return false
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(firstOfTarget); d > last {
		d = last
	}
	return firstOfTarget.AddDate(0, 0, d-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
