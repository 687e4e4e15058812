// Package algo has the pure temporal bucketing functions used by metric generation.
package algo

import (
	"fmt"
	"time"

	"github.com/huangsam/cohort/schema"
)

// Stay length buckets are 12 months wide up to this many months.
const maxStayLengthMonths = 120

// AgeAt returns the age in whole years of someone born on birthdate at the given date.
func AgeAt(birthdate, at time.Time) int {
	age := at.Year() - birthdate.Year()
	if at.Month() < birthdate.Month() || (at.Month() == birthdate.Month() && at.Day() < birthdate.Day()) {
		age--
	}
	return age
}

// AgeBucket returns the age bucket at the given date, or "" when either date is unknown.
func AgeBucket(birthdate, at time.Time) string {
	if birthdate.IsZero() || at.IsZero() {
		return ""
	}
	age := AgeAt(birthdate, at)
	switch {
	case age < 25:
		return "<25"
	case age <= 29:
		return "25-29"
	case age <= 34:
		return "30-34"
	case age <= 39:
		return "35-39"
	default:
		return "40<"
	}
}

// MonthsBetween returns the whole calendar months from start to end.
// A partial final month is not counted.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

// StayLengthFromEvent returns the months between admission and release.
// ok is false when either date is missing.
func StayLengthFromEvent(info schema.ReleaseInfo) (months int, ok bool) {
	if info.OriginalAdmissionDate.IsZero() || info.ReleaseDate.IsZero() {
		return 0, false
	}
	return MonthsBetween(info.OriginalAdmissionDate, info.ReleaseDate), true
}

// StayLengthBucket labels the 12-month interval containing months.
// The lower edge is inclusive, so 12 is "12-24".
func StayLengthBucket(months int) string {
	switch {
	case months < 12:
		return "<12"
	case months >= maxStayLengthMonths:
		return fmt.Sprintf("%d<", maxStayLengthMonths)
	default:
		lo := months / 12 * 12
		return fmt.Sprintf("%d-%d", lo, lo+12)
	}
}

// StayLengthBucketFor returns the stay length bucket of a release, or "" when unknown.
func StayLengthBucketFor(info schema.ReleaseInfo) string {
	months, ok := StayLengthFromEvent(info)
	if !ok {
		return ""
	}
	return StayLengthBucket(months)
}
