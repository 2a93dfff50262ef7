package daterange

import (
	"testing"
	"time"

	"finara/internal/testutil"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestResolve_RelativePresets(t *testing.T) {
	tests := []struct {
		preset   Preset
		wantFrom time.Time
	}{
		{Last30Days, time.Date(2024, time.February, 14, 10, 30, 0, 0, time.UTC)},
		{Last3Months, time.Date(2023, time.December, 15, 10, 30, 0, 0, time.UTC)},
		{Last6Months, time.Date(2023, time.September, 15, 10, 30, 0, 0, time.UTC)},
		{LastYear, time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC)},
		{AllTime, time.Unix(0, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			r, err := Resolve(tt.preset, "", "", fixedNow)
			testutil.AssertNoError(t, err)

			if !r.From.Equal(tt.wantFrom) {
				t.Errorf("expected from %s, got %s", tt.wantFrom, r.From)
			}
			if !r.To.Equal(fixedNow) {
				t.Errorf("expected to = now, got %s", r.To)
			}
			if r.From.After(r.To) {
				t.Errorf("from %s is after to %s", r.From, r.To)
			}
		})
	}
}

func TestResolve_ToIsNow(t *testing.T) {
	now := time.Now()
	for _, preset := range []Preset{Last30Days, Last3Months, Last6Months, LastYear} {
		r, err := Resolve(preset, "", "", now)
		testutil.AssertNoError(t, err)
		if time.Since(r.To) > 5*time.Second {
			t.Errorf("%s: expected to within a few seconds of now, got %s", preset, r.To)
		}
	}
}

func TestResolve_LastCalendarMonth(t *testing.T) {
	t.Run("previous_full_month", func(t *testing.T) {
		r, err := Resolve(LastCalendarMonth, "", "", fixedNow)
		testutil.AssertNoError(t, err)

		wantFrom := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC)
		if !r.From.Equal(wantFrom) {
			t.Errorf("expected from %s, got %s", wantFrom, r.From)
		}
		if !r.To.Equal(wantTo) {
			t.Errorf("expected to %s, got %s", wantTo, r.To)
		}
	})

	t.Run("january_wraps_to_december", func(t *testing.T) {
		now := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
		r, err := Resolve(LastCalendarMonth, "", "", now)
		testutil.AssertNoError(t, err)

		if r.From.Year() != 2023 || r.From.Month() != time.December || r.From.Day() != 1 {
			t.Errorf("expected 2023-12-01, got %s", r.From)
		}
		if r.To.Day() != 31 || r.To.Month() != time.December {
			t.Errorf("expected 2023-12-31, got %s", r.To)
		}
	})
}

func TestResolve_Custom(t *testing.T) {
	t.Run("valid_normalizes_end_of_day", func(t *testing.T) {
		r, err := Resolve(Custom, "2024-01-01", "2024-01-31", fixedNow)
		testutil.AssertNoError(t, err)

		want := time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC)
		if !r.To.Equal(want) {
			t.Errorf("expected to %s, got %s", want, r.To)
		}
		if !r.From.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from %s", r.From)
		}
	})

	t.Run("rfc3339_bounds", func(t *testing.T) {
		r, err := Resolve(Custom, "2024-01-01T00:00:00Z", "2024-01-02T08:00:00Z", fixedNow)
		testutil.AssertNoError(t, err)
		if r.To.Hour() != 23 || r.To.Day() != 2 {
			t.Errorf("expected end of 2024-01-02, got %s", r.To)
		}
	})

	t.Run("from_after_to", func(t *testing.T) {
		_, err := Resolve(Custom, "2024-01-10", "2024-01-05", fixedNow)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("same_day", func(t *testing.T) {
		_, err := Resolve(Custom, "2024-01-10", "2024-01-10", fixedNow)
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_bound", func(t *testing.T) {
		_, err := Resolve(Custom, "2024-01-10", "", fixedNow)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("unparsable", func(t *testing.T) {
		_, err := Resolve(Custom, "yesterday", "2024-01-10", fixedNow)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})
}

func TestResolve_InvalidPreset(t *testing.T) {
	_, err := Resolve(Preset("fortnight"), "", "", fixedNow)
	testutil.AssertAppError(t, err, "INVALID_DATE_PRESET")
}

func TestPriorPeriod(t *testing.T) {
	t.Run("custom_month", func(t *testing.T) {
		from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC)

		prevFrom, prevTo := PriorPeriod(from, to)

		// 31 days long, so the prior window starts 31 days earlier.
		wantFrom := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2023, time.December, 31, 23, 59, 59, 999000000, time.UTC)
		if !prevFrom.Equal(wantFrom) {
			t.Errorf("expected prior from %s, got %s", wantFrom, prevFrom)
		}
		if !prevTo.Equal(wantTo) {
			t.Errorf("expected prior to %s, got %s", wantTo, prevTo)
		}
	})

	t.Run("partial_day_counts_as_one", func(t *testing.T) {
		from := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

		prevFrom, prevTo := PriorPeriod(from, to)
		if !prevFrom.Equal(from.Add(-24 * time.Hour)) {
			t.Errorf("expected shift of one day, got %s", prevFrom)
		}
		if !prevTo.Equal(to.Add(-24 * time.Hour)) {
			t.Errorf("expected shift of one day, got %s", prevTo)
		}
	})

	t.Run("all_time_has_no_prior", func(t *testing.T) {
		r, err := Resolve(AllTime, "", "", fixedNow)
		testutil.AssertNoError(t, err)
		if _, ok := r.Prior(); ok {
			t.Error("expected no prior period for all-time")
		}
	})

	t.Run("range_prior_keeps_preset", func(t *testing.T) {
		r, err := Resolve(Last30Days, "", "", fixedNow)
		testutil.AssertNoError(t, err)
		prior, ok := r.Prior()
		if !ok {
			t.Fatal("expected a prior period")
		}
		if prior.Preset != Last30Days {
			t.Errorf("expected preset to carry over, got %s", prior.Preset)
		}
		if !prior.To.Before(r.From) {
			t.Errorf("expected prior to end before current starts: %s vs %s", prior.To, r.From)
		}
	})
}
