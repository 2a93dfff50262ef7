// Package daterange turns analytics presets and explicit bounds into concrete
// date intervals and derives the comparable prior period.
package daterange

import (
	"time"

	apperrors "finara/internal/errors"
)

// Preset is a named shorthand for a date interval.
type Preset string

const (
	Last30Days        Preset = "30days"
	LastCalendarMonth Preset = "lastMonth"
	Last3Months       Preset = "3months"
	Last6Months       Preset = "6months"
	LastYear          Preset = "1year"
	AllTime           Preset = "allTime"
	Custom            Preset = "custom"
)

// IsValid reports whether p is a known preset.
func (p Preset) IsValid() bool {
	switch p {
	case Last30Days, LastCalendarMonth, Last3Months, Last6Months, LastYear, AllTime, Custom:
		return true
	}
	return false
}

// DefaultPreset is used when a request does not name one.
const DefaultPreset = Last30Days

const day = 24 * time.Hour

// Range is an inclusive [From, To] interval resolved from a preset.
type Range struct {
	Preset Preset    `json:"value"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// Resolve computes the interval for preset relative to now. from and to are
// only consulted for the custom preset and accept YYYY-MM-DD or RFC 3339.
func Resolve(preset Preset, from, to string, now time.Time) (Range, error) {
	r := Range{Preset: preset, To: now}

	switch preset {
	case Last30Days:
		r.From = now.AddDate(0, 0, -30)
	case LastCalendarMonth:
		// Previous full calendar month, not a rolling window.
		r.From = StartOfMonth(now).AddDate(0, -1, 0)
		r.To = EndOfDay(StartOfMonth(now).AddDate(0, 0, -1))
	case Last3Months:
		r.From = now.AddDate(0, -3, 0)
	case Last6Months:
		r.From = now.AddDate(0, -6, 0)
	case LastYear:
		r.From = now.AddDate(-1, 0, 0)
	case AllTime:
		r.From = time.Unix(0, 0).In(now.Location())
	case Custom:
		return resolveCustom(from, to, now.Location())
	default:
		return Range{}, apperrors.ErrInvalidDatePreset
	}

	return r, nil
}

func resolveCustom(from, to string, loc *time.Location) (Range, error) {
	if from == "" || to == "" {
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange, "Missing required parameters: from and to dates")
	}

	fromDate, err := ParseDate(from, loc)
	if err != nil {
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange, "Invalid date format. Use YYYY-MM-DD")
	}
	toDate, err := ParseDate(to, loc)
	if err != nil {
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange, "Invalid date format. Use YYYY-MM-DD")
	}
	if fromDate.After(toDate) {
		return Range{}, apperrors.ErrInvalidDateRange
	}

	return Range{Preset: Custom, From: fromDate, To: EndOfDay(toDate)}, nil
}

// Prior returns the window of identical whole-day length immediately before
// r. ok is false for the all-time preset, which has no meaningful predecessor.
func (r Range) Prior() (prior Range, ok bool) {
	if r.Preset == AllTime {
		return Range{}, false
	}
	from, to := PriorPeriod(r.From, r.To)
	return Range{Preset: r.Preset, From: from, To: to}, true
}

// PriorPeriod shifts both bounds back by the period length in whole days,
// floor((to-from)/1d) + 1.
func PriorPeriod(from, to time.Time) (prevFrom, prevTo time.Time) {
	days := int64(to.Sub(from)/day) + 1
	shift := time.Duration(days) * day
	return from.Add(-shift), to.Add(-shift)
}

// ParseDate accepts YYYY-MM-DD (interpreted in loc) or RFC 3339.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 on t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PreviousMonth returns the previous full calendar month relative to now.
func PreviousMonth(now time.Time) Range {
	r, _ := Resolve(LastCalendarMonth, "", "", now)
	return r
}
