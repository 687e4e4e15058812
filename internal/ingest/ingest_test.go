package ingest

import (
	"bytes"
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cohort/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/people.json
var peopleJSONFixture []byte

//go:embed testdata/people.jsonl
var peopleJSONLFixture []byte

//go:embed testdata/people.yaml
var peopleYAMLFixture []byte

//go:embed testdata/bad_return.json
var badReturnFixture []byte

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDecodeJSONArray(t *testing.T) {
	people, err := Decode(bytes.NewReader(peopleJSONFixture), JSONFormat)
	require.NoError(t, err)
	require.Len(t, people, 2)

	first := people[0]
	assert.Equal(t, int64(12345), first.Person.PersonID)
	assert.Equal(t, date(1984, 8, 31), first.Person.Birthdate)
	assert.Equal(t, schema.Female, first.Person.Gender)
	assert.Equal(t, []schema.Race{schema.White}, first.Person.Races)
	assert.Equal(t, []int{2008}, first.Cohorts.Years())

	e, ok := first.Cohorts[2008][0].(schema.RecidivismReleaseEvent)
	require.True(t, ok)
	assert.Equal(t, date(2014, 5, 12), e.ReincarcerationDate)
	assert.Equal(t, schema.NewAdmissionReturn, e.ReturnType)
	assert.Equal(t, "county", e.CountyOfResidence)

	second := people[1]
	require.Len(t, second.Cohorts[1908], 2, "two releases in the same year keep append order")
	_, ok = second.Cohorts[1908][0].(schema.RecidivismReleaseEvent)
	assert.True(t, ok)
	_, ok = second.Cohorts[1908][1].(schema.NonRecidivismReleaseEvent)
	assert.True(t, ok)
}

func TestDecodeJSONLines(t *testing.T) {
	people, err := Decode(bytes.NewReader(peopleJSONLFixture), JSONFormat)
	require.NoError(t, err)
	require.Len(t, people, 2)

	e, ok := people[1].Cohorts[2015][0].(schema.RecidivismReleaseEvent)
	require.True(t, ok)
	assert.Equal(t, schema.RevocationReturn, e.ReturnType)
	assert.Equal(t, schema.ProbationSupervision, e.FromSupervisionType)
}

func TestDecodeYAML(t *testing.T) {
	people, err := Decode(bytes.NewReader(peopleYAMLFixture), YAMLFormat)
	require.NoError(t, err)
	require.Len(t, people, 1)

	p := people[0]
	assert.Equal(t, schema.TransFemale, p.Person.Gender)
	assert.Empty(t, p.Person.Races)
	assert.Equal(t, []schema.Ethnicity{schema.Hispanic}, p.Person.Ethnicities)
	assert.Equal(t, []int{2012, 2017}, p.Cohorts.Years())

	undated := p.Cohorts[2017][0].Release()
	assert.True(t, undated.ReleaseDate.IsZero())
}

func TestDecodeEmpty(t *testing.T) {
	people, err := Decode(strings.NewReader("  \n"), JSONFormat)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing person id", `{"release_events": []}`},
		{"unknown field", `{"person_id": 1, "height": 180}`},
		{"bad gender", `{"person_id": 1, "gender": "UNKNOWN"}`},
		{"bad race", `{"person_id": 1, "races": ["PURPLE"]}`},
		{"bad date", `{"person_id": 1, "birthdate": "31/08/1984"}`},
		{"no cohort and no release", `{"person_id": 1, "release_events": [{"state_code": "CA"}]}`},
		{"return type without reincarceration", `{"person_id": 1, "release_events": [{"state_code": "CA", "release_date": "2010-01-01", "return_type": "REVOCATION"}]}`},
		{"reincarceration before release", `{"person_id": 1, "release_events": [{"state_code": "CA", "release_date": "2010-01-01", "reincarceration_date": "2009-01-01", "return_type": "REVOCATION"}]}`},
		{"release before admission", `{"person_id": 1, "release_events": [{"state_code": "CA", "original_admission_date": "2011-01-01", "release_date": "2010-01-01"}]}`},
		{"missing return type", `{"person_id": 1, "release_events": [{"state_code": "CA", "release_date": "2010-01-01", "reincarceration_date": "2011-01-01"}]}`},
		{"bad violation", `{"person_id": 1, "release_events": [{"state_code": "CA", "release_date": "2010-01-01", "reincarceration_date": "2011-01-01", "return_type": "REVOCATION", "source_violation_type": "ARSON"}]}`},
		{"supervision on new admission", string(badReturnFixture)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), JSONFormat)
			assert.Error(t, err)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, expected := range map[string]Format{
		"a.json":    JSONFormat,
		"a.JSONL":   JSONFormat,
		"b.ndjson":  JSONFormat,
		"c.yaml":    YAMLFormat,
		"dir/d.yml": YAMLFormat,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, expected, got, path)
	}
	_, err := FormatFromPath("people.csv")
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "people.json")
	yamlPath := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(jsonPath, peopleJSONFixture, 0o600))
	require.NoError(t, os.WriteFile(yamlPath, peopleYAMLFixture, 0o600))

	people, err := LoadFiles(context.Background(), yamlPath, jsonPath)
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, int64(7), people[0].Person.PersonID, "file order is preserved")
	assert.Equal(t, int64(12345), people[1].Person.PersonID)

	_, err = LoadFiles(context.Background())
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = LoadFiles(context.Background(), jsonPath, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	year, ev, err := ParseEvent([]byte(`{"state_code": "CA", "release_date": "2012-04-20", "reincarceration_date": "2016-04-20", "return_type": "REVOCATION", "from_supervision_type": "PAROLE"}`))
	require.NoError(t, err)
	assert.Equal(t, 2012, year)
	e, ok := ev.(schema.RecidivismReleaseEvent)
	require.True(t, ok)
	assert.Equal(t, schema.ParoleSupervision, e.FromSupervisionType)

	_, _, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
