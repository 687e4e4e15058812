package core

import (
	"testing"
	"time"

	"github.com/huangsam/cohort/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDemographicTuples(t *testing.T) {
	p := schema.Person{
		PersonID:    1,
		Birthdate:   date(1984, 1, 1),
		Gender:      schema.Male,
		Races:       []schema.Race{schema.Black, schema.White, schema.Black},
		Ethnicities: []schema.Ethnicity{schema.Hispanic},
	}
	info := schema.ReleaseInfo{
		OriginalAdmissionDate: date(2008, 6, 1),
		ReleaseDate:           date(2010, 1, 1),
		ReleaseFacility:       "Hudson",
	}

	tuples := DemographicTuples(p, info, schema.AllInclusions())
	require.Len(t, tuples, 2, "duplicate races collapse")

	base := schema.Characteristics{
		AgeBucket:        "25-29",
		Gender:           schema.Male,
		Ethnicity:        schema.Hispanic,
		ReleaseFacility:  "Hudson",
		StayLengthBucket: "12-24",
	}
	black, white := base, base
	black.Race = schema.Black
	white.Race = schema.White
	assert.Equal(t, []schema.Characteristics{black, white}, tuples)
}

func TestDemographicTuplesExclusions(t *testing.T) {
	p := schema.Person{
		Birthdate: date(1984, 1, 1),
		Gender:    schema.Female,
		Races:     []schema.Race{schema.Black, schema.White},
	}
	info := schema.ReleaseInfo{ReleaseDate: date(2010, 1, 1)}

	t.Run("excluded race is a single tuple", func(t *testing.T) {
		tuples := DemographicTuples(p, info, schema.Inclusions{Gender: true})
		assert.Equal(t, []schema.Characteristics{{Gender: schema.Female}}, tuples)
	})

	t.Run("nothing included", func(t *testing.T) {
		tuples := DemographicTuples(p, info, schema.Inclusions{})
		assert.Equal(t, []schema.Characteristics{{}}, tuples)
	})

	t.Run("unknown values stay absent", func(t *testing.T) {
		tuples := DemographicTuples(schema.Person{}, schema.ReleaseInfo{}, schema.AllInclusions())
		assert.Equal(t, []schema.Characteristics{{}}, tuples)
	})
}

func TestPowerset(t *testing.T) {
	single := []schema.Characteristics{{Gender: schema.Female, Race: schema.White}}
	subsets := Powerset(single)
	assert.ElementsMatch(t, []schema.Characteristics{
		{Gender: schema.Female, Race: schema.White},
		{Race: schema.White},
		{Gender: schema.Female},
		{},
	}, subsets)

	two := []schema.Characteristics{
		{Gender: schema.Female, Race: schema.White},
		{Gender: schema.Female, Race: schema.Black},
	}
	assert.Len(t, Powerset(two), 6, "shared subsets are emitted once")

	assert.Equal(t, []schema.Characteristics{{}}, Powerset([]schema.Characteristics{{}}))
}

func TestWithCounty(t *testing.T) {
	tuples := []schema.Characteristics{{Gender: schema.Male}}

	assert.Equal(t, tuples, WithCounty(tuples, ""))
	assert.Equal(t, []schema.Characteristics{
		{Gender: schema.Male},
		{Gender: schema.Male, CountyOfResidence: "Cass"},
	}, WithCounty(tuples, "Cass"))
	assert.Equal(t, "", tuples[0].CountyOfResidence, "input is not modified")
}

func TestPersonLevelTuple(t *testing.T) {
	p := schema.Person{
		PersonID: 42,
		Gender:   schema.Male,
		Races:    []schema.Race{schema.Asian, schema.White},
	}
	info := schema.ReleaseInfo{ReleaseDate: date(2010, 1, 1), CountyOfResidence: "Cass"}

	ch := personLevelTuple(p, info, schema.AllInclusions())
	assert.Equal(t, schema.Characteristics{
		Gender:            schema.Male,
		Race:              schema.Asian,
		CountyOfResidence: "Cass",
		PersonID:          42,
	}, ch)
}
