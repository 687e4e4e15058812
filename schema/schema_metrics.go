package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Characteristics is one slice of the population. Empty fields are absent dimensions.
type Characteristics struct {
	AgeBucket         string
	Gender            Gender
	Race              Race
	Ethnicity         Ethnicity
	ReleaseFacility   string
	StayLengthBucket  string
	CountyOfResidence string
	PersonID          int64 // only set on person-level variants
}

// ReturnTemplate narrows a metric to a kind of return. Empty fields match any value.
type ReturnTemplate struct {
	ReturnType          ReturnType
	FromSupervisionType FromSupervisionType
	SourceViolationType ViolationType
}

// IsAllReturns reports whether the template has no sub-fields.
func (t ReturnTemplate) IsAllReturns() bool {
	return t == ReturnTemplate{}
}

// Window is the time window of a metric key. Which fields are set depends on the metric type:
// FollowUpPeriod for RATE, Year/Month/MetricPeriodMonths for COUNT, StartDate/EndDate for LIBERTY.
type Window struct {
	FollowUpPeriod     int
	Year               int
	Month              int
	MetricPeriodMonths int
	StartDate          string
	EndDate            string
}

// MetricKey identifies one reportable metric slice. It is comparable and usable as a map key.
type MetricKey struct {
	Characteristics
	Window
	ReturnTemplate
	Methodology Methodology
	MetricType  MetricType
}

// MetricPair is one indicator contribution emitted by the combination generator.
type MetricPair struct {
	Key   MetricKey
	Value float64
}

// Fields returns the present fields of the key by their external names.
func (k MetricKey) Fields() map[string]any {
	m := map[string]any{
		"metric_type": string(k.MetricType),
		"methodology": string(k.Methodology),
	}
	putString := func(name, v string) {
		if v != "" {
			m[name] = v
		}
	}
	putInt := func(name string, v int) {
		if v != 0 {
			m[name] = v
		}
	}
	putString("age_bucket", k.AgeBucket)
	putString("gender", string(k.Gender))
	putString("race", string(k.Race))
	putString("ethnicity", string(k.Ethnicity))
	putString("release_facility", k.ReleaseFacility)
	putString("stay_length_bucket", k.StayLengthBucket)
	putString("county_of_residence", k.CountyOfResidence)
	if k.PersonID != 0 {
		m["person_id"] = k.PersonID
	}
	putInt("follow_up_period", k.FollowUpPeriod)
	putInt("year", k.Year)
	putInt("month", k.Month)
	putInt("metric_period_months", k.MetricPeriodMonths)
	putString("start_date", k.StartDate)
	putString("end_date", k.EndDate)
	putString("return_type", string(k.ReturnType))
	putString("from_supervision_type", string(k.FromSupervisionType))
	putString("source_violation_type", string(k.SourceViolationType))
	return m
}

// Encode returns a stable, order-independent encoding of the key, suitable as a grouping key.
func (k MetricKey) Encode() string {
	// encoding/json writes map keys in sorted order
	b, _ := json.Marshal(k.Fields())
	return string(b)
}

// keyWire mirrors MetricKey.Fields for decoding.
type keyWire struct {
	MetricType          string `json:"metric_type"`
	Methodology         string `json:"methodology"`
	AgeBucket           string `json:"age_bucket"`
	Gender              string `json:"gender"`
	Race                string `json:"race"`
	Ethnicity           string `json:"ethnicity"`
	ReleaseFacility     string `json:"release_facility"`
	StayLengthBucket    string `json:"stay_length_bucket"`
	CountyOfResidence   string `json:"county_of_residence"`
	PersonID            int64  `json:"person_id"`
	FollowUpPeriod      int    `json:"follow_up_period"`
	Year                int    `json:"year"`
	Month               int    `json:"month"`
	MetricPeriodMonths  int    `json:"metric_period_months"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	ReturnType          string `json:"return_type"`
	FromSupervisionType string `json:"from_supervision_type"`
	SourceViolationType string `json:"source_violation_type"`
}

// DecodeKey parses a key produced by Encode.
func DecodeKey(encoded string) (MetricKey, error) {
	var w keyWire
	if err := json.Unmarshal([]byte(encoded), &w); err != nil {
		return MetricKey{}, fmt.Errorf("failed to decode metric key: %w", err)
	}
	if _, ok := ValidMetricTypes[MetricType(w.MetricType)]; !ok {
		return MetricKey{}, fmt.Errorf("invalid metric_type %q in key", w.MetricType)
	}
	if _, ok := ValidMethodologies[Methodology(w.Methodology)]; !ok {
		return MetricKey{}, fmt.Errorf("invalid methodology %q in key", w.Methodology)
	}
	return MetricKey{
		Characteristics: Characteristics{
			AgeBucket:         w.AgeBucket,
			Gender:            Gender(w.Gender),
			Race:              Race(w.Race),
			Ethnicity:         Ethnicity(w.Ethnicity),
			ReleaseFacility:   w.ReleaseFacility,
			StayLengthBucket:  w.StayLengthBucket,
			CountyOfResidence: w.CountyOfResidence,
			PersonID:          w.PersonID,
		},
		Window: Window{
			FollowUpPeriod:     w.FollowUpPeriod,
			Year:               w.Year,
			Month:              w.Month,
			MetricPeriodMonths: w.MetricPeriodMonths,
			StartDate:          w.StartDate,
			EndDate:            w.EndDate,
		},
		ReturnTemplate: ReturnTemplate{
			ReturnType:          ReturnType(w.ReturnType),
			FromSupervisionType: FromSupervisionType(w.FromSupervisionType),
			SourceViolationType: ViolationType(w.SourceViolationType),
		},
		Methodology: Methodology(w.Methodology),
		MetricType:  MetricType(w.MetricType),
	}, nil
}

// MetricField is one named output value of an accumulator.
type MetricField struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MetricRecord is a final, typed metric produced by the assembler.
type MetricRecord struct {
	Key     MetricKey
	Count   int64         // number of accumulated instances
	Sum     float64       // sum of accumulated values
	Value   float64       // headline value, NaN when undefined
	Fields  []MetricField // accumulator-specific named outputs
	Encoded string        // Key.Encode(), cached for sorting and storage
}

// AsMap flattens the record for JSON output. NaN values become null.
func (r MetricRecord) AsMap() map[string]any {
	m := r.Key.Fields()
	for _, f := range r.Fields {
		m[f.Name] = NullableFloat(f.Value)
	}
	m["value"] = NullableFloat(r.Value)
	return m
}

// NullableFloat returns nil for NaN and the value otherwise.
func NullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
