package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	apperrors "finara/internal/errors"
	"finara/internal/models"
)

// Schedule rules for the background jobs and report subscriptions, in
// RFC 5545 RRULE form. All are evaluated in UTC.
const (
	DailyTransactionsRule = "FREQ=DAILY;BYHOUR=0;BYMINUTE=5;BYSECOND=0"
	MonthlyReportsRule    = "FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=2;BYMINUTE=30;BYSECOND=0"
)

// Rule is a parsed RRULE that can be re-anchored at any instant.
type Rule struct {
	raw    string
	option rrule.ROption
}

// ParseRule parses an RRULE string, with or without the "RRULE:" prefix.
func ParseRule(ruleStr string) (*Rule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE %q: %w", ruleStr, err)
	}
	return &Rule{raw: ruleStr, option: *opt}, nil
}

// MustParseRule is ParseRule for package-level rule constants.
func MustParseRule(ruleStr string) *Rule {
	r, err := ParseRule(ruleStr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the rule text.
func (r *Rule) String() string { return r.raw }

// NextAfter returns the first occurrence strictly after t.
func (r *Rule) NextAfter(t time.Time) (time.Time, error) {
	opt := r.option
	// Anchor at the start of t's day so BYHOUR/BYMINUTE slots earlier on the
	// same day are still generated and then skipped by After.
	utc := t.UTC()
	opt.Dtstart = time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build RRULE %q: %w", r.raw, err)
	}

	next := rule.After(utc, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("RRULE %q has no occurrence after %s", r.raw, utc.Format(time.RFC3339))
	}
	return next, nil
}

var reportRules = map[models.ReportFrequency]*Rule{
	models.ReportFrequencyMonthly: MustParseRule(MonthlyReportsRule),
}

// NextReportDate returns the next scheduled report time strictly after now
// for frequency. The strict inequality is what guarantees the report job
// always moves a setting forward.
func NextReportDate(frequency models.ReportFrequency, now time.Time) (time.Time, error) {
	rule, ok := reportRules[frequency]
	if !ok {
		return time.Time{}, apperrors.ErrInvalidFrequency
	}
	return rule.NextAfter(now)
}
