package core

import (
	"github.com/huangsam/cohort/core/algo"
	"github.com/huangsam/cohort/schema"
)

// DemographicTuples returns one characteristic tuple per (race, ethnicity) pair of the person,
// with the event-level dimensions of the release filled in. Excluded dimensions are never computed.
func DemographicTuples(p schema.Person, info schema.ReleaseInfo, inc schema.Inclusions) []schema.Characteristics {
	var base schema.Characteristics
	if inc.AgeBucket {
		base.AgeBucket = algo.AgeBucket(p.Birthdate, info.ReleaseDate)
	}
	if inc.Gender {
		base.Gender = p.Gender
	}
	if inc.ReleaseFacility {
		base.ReleaseFacility = info.ReleaseFacility
	}
	if inc.StayLengthBucket {
		base.StayLengthBucket = algo.StayLengthBucketFor(info)
	}

	races := []schema.Race{""}
	if inc.Race && len(p.Races) > 0 {
		races = uniqueValues(p.Races)
	}
	ethnicities := []schema.Ethnicity{""}
	if inc.Ethnicity && len(p.Ethnicities) > 0 {
		ethnicities = uniqueValues(p.Ethnicities)
	}

	tuples := make([]schema.Characteristics, 0, len(races)*len(ethnicities))
	for _, r := range races {
		for _, e := range ethnicities {
			t := base
			t.Race = r
			t.Ethnicity = e
			tuples = append(tuples, t)
		}
	}
	return tuples
}

// uniqueValues drops repeated values while keeping first-seen order.
func uniqueValues[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// clearDimension removes dimension i (in tuple order) and reports whether it was present.
func clearDimension(c *schema.Characteristics, i int) bool {
	var present bool
	switch i {
	case 0:
		present, c.AgeBucket = c.AgeBucket != "", ""
	case 1:
		present, c.Gender = c.Gender != "", ""
	case 2:
		present, c.Race = c.Race != "", ""
	case 3:
		present, c.Ethnicity = c.Ethnicity != "", ""
	case 4:
		present, c.ReleaseFacility = c.ReleaseFacility != "", ""
	case 5:
		present, c.StayLengthBucket = c.StayLengthBucket != "", ""
	}
	return present
}

// Powerset returns every subset of the present dimensions of each tuple, deduplicated
// across tuples. The empty tuple is always included.
func Powerset(tuples []schema.Characteristics) []schema.Characteristics {
	seen := make(map[schema.Characteristics]struct{})
	var out []schema.Characteristics
	for _, t := range tuples {
		var present []int
		for i := range schema.AllDimensions {
			probe := t
			if clearDimension(&probe, i) {
				present = append(present, i)
			}
		}
		// mask bit b set means dimension present[b] is dropped
		for mask := range 1 << len(present) {
			subset := t
			for b, dim := range present {
				if mask&(1<<b) != 0 {
					clearDimension(&subset, dim)
				}
			}
			if _, ok := seen[subset]; ok {
				continue
			}
			seen[subset] = struct{}{}
			out = append(out, subset)
		}
	}
	return out
}

// WithCounty doubles the tuples: once without the county and once with it.
// When the county is unknown both variants are identical, so the tuples are returned once.
func WithCounty(tuples []schema.Characteristics, county string) []schema.Characteristics {
	if county == "" {
		return tuples
	}
	out := make([]schema.Characteristics, 0, 2*len(tuples))
	out = append(out, tuples...)
	for _, t := range tuples {
		t.CountyOfResidence = county
		out = append(out, t)
	}
	return out
}

// characteristicSets returns the full set of tuples a release is sliced by.
func characteristicSets(p schema.Person, info schema.ReleaseInfo, opts Options) []schema.Characteristics {
	tuples := DemographicTuples(p, info, opts.Inclusions)
	if opts.Mode == schema.PowersetMode {
		tuples = Powerset(tuples)
	}
	return WithCounty(tuples, info.CountyOfResidence)
}

// personLevelTuple returns the single tuple carrying every dimension plus the person id.
// Person-level variants use the first (race, ethnicity) pair.
func personLevelTuple(p schema.Person, info schema.ReleaseInfo, inc schema.Inclusions) schema.Characteristics {
	t := DemographicTuples(p, info, inc)[0]
	t.CountyOfResidence = info.CountyOfResidence
	t.PersonID = p.PersonID
	return t
}
