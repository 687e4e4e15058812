package ingest

import (
	"fmt"
	"time"

	"github.com/huangsam/cohort/schema"
)

// PersonWire is the on-disk shape of one person history.
type PersonWire struct {
	PersonID      int64       `json:"person_id" yaml:"person_id"`
	Birthdate     string      `json:"birthdate,omitempty" yaml:"birthdate,omitempty"`
	Gender        string      `json:"gender,omitempty" yaml:"gender,omitempty"`
	Races         []string    `json:"races,omitempty" yaml:"races,omitempty"`
	Ethnicities   []string    `json:"ethnicities,omitempty" yaml:"ethnicities,omitempty"`
	ReleaseEvents []EventWire `json:"release_events" yaml:"release_events"`
}

// EventWire is the on-disk shape of one release event.
// A present reincarceration_date makes it a recidivism event.
type EventWire struct {
	CohortYear              int    `json:"cohort_year,omitempty" yaml:"cohort_year,omitempty"`
	StateCode               string `json:"state_code" yaml:"state_code"`
	OriginalAdmissionDate   string `json:"original_admission_date,omitempty" yaml:"original_admission_date,omitempty"`
	ReleaseDate             string `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	ReleaseFacility         string `json:"release_facility,omitempty" yaml:"release_facility,omitempty"`
	CountyOfResidence       string `json:"county_of_residence,omitempty" yaml:"county_of_residence,omitempty"`
	ReincarcerationDate     string `json:"reincarceration_date,omitempty" yaml:"reincarceration_date,omitempty"`
	ReincarcerationFacility string `json:"reincarceration_facility,omitempty" yaml:"reincarceration_facility,omitempty"`
	ReturnType              string `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	FromSupervisionType     string `json:"from_supervision_type,omitempty" yaml:"from_supervision_type,omitempty"`
	SourceViolationType     string `json:"source_violation_type,omitempty" yaml:"source_violation_type,omitempty"`
}

// ToHistory validates the wire person and converts it into a hydrated history.
func (w PersonWire) ToHistory() (schema.PersonHistory, error) {
	if w.PersonID <= 0 {
		return schema.PersonHistory{}, fmt.Errorf("person_id must be positive (received %d)", w.PersonID)
	}
	p := schema.Person{PersonID: w.PersonID}

	var err error
	if p.Birthdate, err = parseDate("birthdate", w.Birthdate); err != nil {
		return schema.PersonHistory{}, personError(w.PersonID, err)
	}
	if w.Gender != "" {
		p.Gender = schema.Gender(w.Gender)
		if _, ok := schema.ValidGenders[p.Gender]; !ok {
			return schema.PersonHistory{}, personError(w.PersonID, fmt.Errorf("invalid gender %q", w.Gender))
		}
	}
	for _, r := range w.Races {
		race := schema.Race(r)
		if _, ok := schema.ValidRaces[race]; !ok {
			return schema.PersonHistory{}, personError(w.PersonID, fmt.Errorf("invalid race %q", r))
		}
		p.Races = append(p.Races, race)
	}
	for _, e := range w.Ethnicities {
		eth := schema.Ethnicity(e)
		if _, ok := schema.ValidEthnicities[eth]; !ok {
			return schema.PersonHistory{}, personError(w.PersonID, fmt.Errorf("invalid ethnicity %q", e))
		}
		p.Ethnicities = append(p.Ethnicities, eth)
	}

	cohorts := make(schema.CohortMap)
	for i, ew := range w.ReleaseEvents {
		year, event, err := ew.ToEvent()
		if err != nil {
			return schema.PersonHistory{}, personError(w.PersonID, fmt.Errorf("release event %d: %w", i, err))
		}
		cohorts[year] = append(cohorts[year], event)
	}
	return schema.PersonHistory{Person: p, Cohorts: cohorts}, nil
}

// ToEvent validates the wire event and returns its cohort year and typed event.
func (w EventWire) ToEvent() (int, schema.ReleaseEvent, error) {
	info := schema.ReleaseInfo{
		StateCode:         w.StateCode,
		ReleaseFacility:   w.ReleaseFacility,
		CountyOfResidence: w.CountyOfResidence,
	}
	var err error
	if info.OriginalAdmissionDate, err = parseDate("original_admission_date", w.OriginalAdmissionDate); err != nil {
		return 0, nil, err
	}
	if info.ReleaseDate, err = parseDate("release_date", w.ReleaseDate); err != nil {
		return 0, nil, err
	}
	if !info.OriginalAdmissionDate.IsZero() && !info.ReleaseDate.IsZero() && info.ReleaseDate.Before(info.OriginalAdmissionDate) {
		return 0, nil, fmt.Errorf("release_date %s is before original_admission_date %s", w.ReleaseDate, w.OriginalAdmissionDate)
	}

	year := w.CohortYear
	if year == 0 {
		if info.ReleaseDate.IsZero() {
			return 0, nil, fmt.Errorf("cohort_year is required when release_date is absent")
		}
		year = info.ReleaseDate.Year()
	}

	if w.ReincarcerationDate == "" {
		if w.ReturnType != "" || w.FromSupervisionType != "" || w.SourceViolationType != "" {
			return 0, nil, fmt.Errorf("return fields require a reincarceration_date")
		}
		return year, schema.NonRecidivismReleaseEvent{ReleaseInfo: info}, nil
	}

	e := schema.RecidivismReleaseEvent{
		ReleaseInfo:             info,
		ReincarcerationFacility: w.ReincarcerationFacility,
		ReturnType:              schema.ReturnType(w.ReturnType),
		FromSupervisionType:     schema.FromSupervisionType(w.FromSupervisionType),
		SourceViolationType:     schema.ViolationType(w.SourceViolationType),
	}
	if e.ReincarcerationDate, err = parseDate("reincarceration_date", w.ReincarcerationDate); err != nil {
		return 0, nil, err
	}
	if !info.ReleaseDate.IsZero() && e.ReincarcerationDate.Before(info.ReleaseDate) {
		return 0, nil, fmt.Errorf("reincarceration_date %s is before release_date %s", w.ReincarcerationDate, w.ReleaseDate)
	}
	if _, ok := schema.ValidReturnTypes[e.ReturnType]; !ok {
		return 0, nil, fmt.Errorf("invalid return_type %q", w.ReturnType)
	}
	if e.FromSupervisionType != "" {
		if _, ok := schema.ValidFromSupervisionTypes[e.FromSupervisionType]; !ok {
			return 0, nil, fmt.Errorf("invalid from_supervision_type %q", w.FromSupervisionType)
		}
	}
	if e.SourceViolationType != "" {
		if _, ok := schema.ValidViolationTypes[e.SourceViolationType]; !ok {
			return 0, nil, fmt.Errorf("invalid source_violation_type %q", w.SourceViolationType)
		}
	}
	if e.ReturnType != schema.RevocationReturn && (e.FromSupervisionType != "" || e.SourceViolationType != "") {
		return 0, nil, fmt.Errorf("from_supervision_type and source_violation_type are only valid for %s", schema.RevocationReturn)
	}
	return year, e, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(schema.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", field, s)
	}
	return t, nil
}

func personError(id int64, err error) error {
	return fmt.Errorf("person %d: %w", id, err)
}
