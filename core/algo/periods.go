package algo

import (
	"time"

	"github.com/huangsam/cohort/schema"
)

// EarliestRecidivatedFollowUpPeriod returns the first follow-up period, in years, in which
// the reincarceration counts as a return. ok is false when there was no reincarceration.
//
// A reincarceration that lands exactly on the release anniversary belongs to the period
// that just ended, so it does not advance to the next one.
func EarliestRecidivatedFollowUpPeriod(release, reincarceration time.Time) (period int, ok bool) {
	if reincarceration.IsZero() {
		return 0, false
	}

	fullYears := reincarceration.Year() - release.Year()
	before := reincarceration.Month() < release.Month() ||
		(reincarceration.Month() == release.Month() && reincarceration.Day() < release.Day())
	if before {
		fullYears--
	}

	if reincarceration.Month() == release.Month() && reincarceration.Day() == release.Day() {
		return fullYears, true
	}
	return fullYears + 1, true
}

// AddYears moves t by n calendar years. A day that does not exist in the target month
// (Feb 29 outside a leap year) clamps to the month's last day instead of rolling over.
func AddYears(t time.Time, n int) time.Time {
	first := time.Date(t.Year()+n, t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}

// RelevantFollowUpPeriods returns the candidates, ascending, whose period has started by
// the evaluation date. Period p starts p-1 years after release.
func RelevantFollowUpPeriods(release, evaluation time.Time, candidates []int) []int {
	relevant := make([]int, 0, len(candidates))
	for _, p := range candidates {
		if p < 1 {
			continue
		}
		if !evaluation.Before(AddYears(release, p-1)) {
			relevant = append(relevant, p)
		}
	}
	return relevant
}

// FollowUpWindowEnd returns the exclusive end of follow-up period p, p years after release.
func FollowUpWindowEnd(release time.Time, p int) time.Time {
	return AddYears(release, p)
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastOfMonth returns midnight UTC on the last day of t's month.
func LastOfMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, -1)
}

// LibertyBuckets returns the month and year windows containing the reincarceration date.
func LibertyBuckets(reincarceration time.Time) []schema.Window {
	year := reincarceration.Year()
	return []schema.Window{
		{
			StartDate: FirstOfMonth(reincarceration).Format(schema.DateLayout),
			EndDate:   LastOfMonth(reincarceration).Format(schema.DateLayout),
		},
		{
			StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format(schema.DateLayout),
			EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).Format(schema.DateLayout),
		},
	}
}

// CountWindows returns the COUNT windows a reincarceration belongs to.
//
// The base window always exists and is keyed by the reincarceration's own month.
// Each trailing window of m > 1 months ends in the evaluation month and is keyed by it;
// it exists only if the reincarceration falls inside it.
func CountWindows(reincarceration, evaluation time.Time, metricPeriodMonths []int) []schema.Window {
	windows := []schema.Window{{
		Year:               reincarceration.Year(),
		Month:              int(reincarceration.Month()),
		MetricPeriodMonths: 1,
	}}

	end := LastOfMonth(evaluation)
	for _, m := range metricPeriodMonths {
		if m <= 1 {
			continue
		}
		start := FirstOfMonth(evaluation).AddDate(0, -(m - 1), 0)
		if reincarceration.Before(start) || reincarceration.After(end) {
			continue
		}
		windows = append(windows, schema.Window{
			Year:               evaluation.Year(),
			Month:              int(evaluation.Month()),
			MetricPeriodMonths: m,
		})
	}
	return windows
}
