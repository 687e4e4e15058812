// Package schema has models, enumerations and metric keys for all parts of cohort.
package schema

import (
	"sort"
	"time"
)

// DateLayout is the calendar date representation used on every boundary.
const DateLayout = "2006-01-02"

// Person is the demographic profile of one individual. Zero values mean unknown.
type Person struct {
	PersonID    int64
	Birthdate   time.Time
	Gender      Gender
	Races       []Race
	Ethnicities []Ethnicity
}

// ReleaseInfo holds the fields common to every release event.
type ReleaseInfo struct {
	StateCode             string
	OriginalAdmissionDate time.Time
	ReleaseDate           time.Time
	ReleaseFacility       string
	CountyOfResidence     string
}

// ReleaseEvent is a closed sum type over NonRecidivismReleaseEvent and RecidivismReleaseEvent.
type ReleaseEvent interface {
	Release() ReleaseInfo
	isReleaseEvent()
}

// NonRecidivismReleaseEvent is a release that was not followed by a reincarceration.
type NonRecidivismReleaseEvent struct {
	ReleaseInfo
}

// RecidivismReleaseEvent is a release that was followed by a reincarceration.
// FromSupervisionType and SourceViolationType are only set for revocations.
type RecidivismReleaseEvent struct {
	ReleaseInfo
	ReincarcerationDate     time.Time
	ReincarcerationFacility string
	ReturnType              ReturnType
	FromSupervisionType     FromSupervisionType
	SourceViolationType     ViolationType
}

// Release returns the common release fields.
func (e NonRecidivismReleaseEvent) Release() ReleaseInfo { return e.ReleaseInfo }

// Release returns the common release fields.
func (e RecidivismReleaseEvent) Release() ReleaseInfo { return e.ReleaseInfo }

func (NonRecidivismReleaseEvent) isReleaseEvent() {}
func (RecidivismReleaseEvent) isReleaseEvent()    {}

// DaysAtLiberty returns the number of days between release and reincarceration.
func (e RecidivismReleaseEvent) DaysAtLiberty() int {
	return int(e.ReincarcerationDate.Sub(e.ReleaseDate).Hours() / 24)
}

// CohortMap maps a release cohort year to that year's events in append order.
type CohortMap map[int][]ReleaseEvent

// Years returns the cohort years in ascending order.
func (c CohortMap) Years() []int {
	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Len returns the total number of events across all cohorts.
func (c CohortMap) Len() int {
	n := 0
	for _, events := range c {
		n += len(events)
	}
	return n
}

// PersonHistory is one person together with their cohort-keyed release events.
type PersonHistory struct {
	Person  Person
	Cohorts CohortMap
}

// Inclusions controls which characteristic dimensions are computed.
type Inclusions struct {
	AgeBucket        bool `json:"age_bucket"`
	Gender           bool `json:"gender"`
	Race             bool `json:"race"`
	Ethnicity        bool `json:"ethnicity"`
	ReleaseFacility  bool `json:"release_facility"`
	StayLengthBucket bool `json:"stay_length_bucket"`
}

// AllInclusions returns inclusions with every dimension enabled.
func AllInclusions() Inclusions {
	return Inclusions{
		AgeBucket:        true,
		Gender:           true,
		Race:             true,
		Ethnicity:        true,
		ReleaseFacility:  true,
		StayLengthBucket: true,
	}
}

// Set toggles a single dimension.
func (i *Inclusions) Set(d Dimension, on bool) {
	switch d {
	case AgeBucketDim:
		i.AgeBucket = on
	case GenderDim:
		i.Gender = on
	case RaceDim:
		i.Race = on
	case EthnicityDim:
		i.Ethnicity = on
	case ReleaseFacilityDim:
		i.ReleaseFacility = on
	case StayLengthBucketDim:
		i.StayLengthBucket = on
	}
}

// Enabled returns the dimensions that are switched on.
func (i Inclusions) Enabled() []Dimension {
	flags := []bool{i.AgeBucket, i.Gender, i.Race, i.Ethnicity, i.ReleaseFacility, i.StayLengthBucket}
	var out []Dimension
	for idx, on := range flags {
		if on {
			out = append(out, AllDimensions[idx])
		}
	}
	return out
}
