package recurrence

import (
	"testing"
	"time"

	"finara/internal/models"
	"finara/internal/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Time
		interval models.RecurringInterval
		want     time.Time
	}{
		{"daily", date(2024, 1, 31), models.RecurringIntervalDaily, date(2024, 2, 1)},
		{"weekly", date(2024, 1, 29), models.RecurringIntervalWeekly, date(2024, 2, 5)},
		{"monthly", date(2024, 1, 15), models.RecurringIntervalMonthly, date(2024, 2, 15)},
		{"monthly_clamps_leap_february", date(2024, 1, 31), models.RecurringIntervalMonthly, date(2024, 2, 29)},
		{"monthly_clamps_february", date(2023, 1, 31), models.RecurringIntervalMonthly, date(2023, 2, 28)},
		{"monthly_clamps_thirty_day_month", date(2024, 3, 31), models.RecurringIntervalMonthly, date(2024, 4, 30)},
		{"monthly_december_rollover", date(2024, 12, 31), models.RecurringIntervalMonthly, date(2025, 1, 31)},
		{"yearly", date(2024, 6, 1), models.RecurringIntervalYearly, date(2025, 6, 1)},
		{"yearly_leap_day", date(2024, 2, 29), models.RecurringIntervalYearly, date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.base, tt.interval)
			testutil.AssertNoError(t, err)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want.Format(time.DateOnly), got.Format(time.DateOnly))
			}
		})
	}

	t.Run("preserves_time_of_day", func(t *testing.T) {
		base := time.Date(2024, 1, 31, 9, 45, 0, 0, time.UTC)
		got, err := Next(base, models.RecurringIntervalMonthly)
		testutil.AssertNoError(t, err)
		if got.Hour() != 9 || got.Minute() != 45 {
			t.Errorf("expected 09:45, got %s", got.Format(time.TimeOnly))
		}
	})

	t.Run("invalid_interval", func(t *testing.T) {
		_, err := Next(date(2024, 1, 1), models.RecurringInterval("HOURLY"))
		testutil.AssertAppError(t, err, "INVALID_RECURRING_INTERVAL")
	})
}

func TestNextAfter(t *testing.T) {
	t.Run("stale_base_recomputed_from_now", func(t *testing.T) {
		now := date(2024, 3, 1)
		got, err := NextAfter(date(2024, 1, 31), now, models.RecurringIntervalMonthly)
		testutil.AssertNoError(t, err)

		if got.Before(now) {
			t.Fatalf("expected result >= %s, got %s", now, got)
		}
		if !got.Equal(date(2024, 4, 1)) {
			t.Errorf("expected 2024-04-01, got %s", got.Format(time.DateOnly))
		}
	})

	t.Run("future_base_kept", func(t *testing.T) {
		now := date(2024, 1, 10)
		got, err := NextAfter(date(2024, 1, 31), now, models.RecurringIntervalMonthly)
		testutil.AssertNoError(t, err)
		if !got.Equal(date(2024, 2, 29)) {
			t.Errorf("expected 2024-02-29, got %s", got.Format(time.DateOnly))
		}
	})

	t.Run("invalid_interval", func(t *testing.T) {
		_, err := NextAfter(date(2024, 1, 1), date(2024, 1, 2), "")
		testutil.AssertAppError(t, err, "INVALID_RECURRING_INTERVAL")
	})
}

func TestOccursOn(t *testing.T) {
	anchor := date(2024, 1, 15) // Monday
	tests := []struct {
		name     string
		day      time.Time
		interval models.RecurringInterval
		want     bool
	}{
		{"daily_any_day", date(2024, 2, 3), models.RecurringIntervalDaily, true},
		{"weekly_same_weekday", date(2024, 1, 22), models.RecurringIntervalWeekly, true},
		{"weekly_other_weekday", date(2024, 1, 23), models.RecurringIntervalWeekly, false},
		{"monthly_same_day", date(2024, 3, 15), models.RecurringIntervalMonthly, true},
		{"monthly_other_day", date(2024, 3, 16), models.RecurringIntervalMonthly, false},
		{"yearly_never", date(2025, 1, 15), models.RecurringIntervalYearly, false},
		{"unknown_never", date(2024, 1, 15), models.RecurringInterval(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccursOn(anchor, tt.day, tt.interval); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
