package outwriter

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/cohort/schema"
	"github.com/montanaflynn/stats"
)

// keyColumns is the fixed CSV column order for metric key fields.
var keyColumns = []string{
	"metric_type",
	"methodology",
	"age_bucket",
	"gender",
	"race",
	"ethnicity",
	"release_facility",
	"stay_length_bucket",
	"county_of_residence",
	"person_id",
	"follow_up_period",
	"year",
	"month",
	"metric_period_months",
	"start_date",
	"end_date",
	"return_type",
	"from_supervision_type",
	"source_violation_type",
}

// keyRow renders the key fields in keyColumns order. Absent fields are empty cells.
func keyRow(k schema.MetricKey) []string {
	fields := k.Fields()
	row := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		if v, ok := fields[col]; ok {
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

// describeSlice renders the characteristic tuple as "name=value" pairs, or "all".
func describeSlice(c schema.Characteristics) string {
	var parts []string
	add := func(name, v string) {
		if v != "" {
			parts = append(parts, name+"="+v)
		}
	}
	add("age", c.AgeBucket)
	add("gender", string(c.Gender))
	add("race", string(c.Race))
	add("ethnicity", string(c.Ethnicity))
	add("facility", c.ReleaseFacility)
	add("stay", c.StayLengthBucket)
	add("county", c.CountyOfResidence)
	if c.PersonID != 0 {
		add("person", strconv.FormatInt(c.PersonID, 10))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

// describeWindow renders whichever window fields the metric type uses.
func describeWindow(k schema.MetricKey) string {
	switch k.MetricType {
	case schema.RateMetric:
		return fmt.Sprintf("period %d", k.FollowUpPeriod)
	case schema.CountMetric:
		if k.Year == 0 {
			return fmt.Sprintf("%dm", k.MetricPeriodMonths)
		}
		return fmt.Sprintf("%04d-%02d/%dm", k.Year, k.Month, k.MetricPeriodMonths)
	case schema.LibertyMetric:
		if k.StartDate == "" {
			return "month, year"
		}
		return k.StartDate + ".." + k.EndDate
	default:
		return ""
	}
}

// describeTemplate renders a return template; the empty template is "ALL".
func describeTemplate(t schema.ReturnTemplate) string {
	if t.IsAllReturns() {
		return "ALL"
	}
	parts := []string{string(t.ReturnType)}
	if t.FromSupervisionType != "" {
		parts = append(parts, string(t.FromSupervisionType))
	}
	if t.SourceViolationType != "" {
		parts = append(parts, string(t.SourceViolationType))
	}
	return strings.Join(parts, "/")
}

// valueSummary describes the defined values of one metric type.
type valueSummary struct {
	MetricType schema.MetricType `json:"metric_type"`
	Records    int               `json:"records"`
	Undefined  int               `json:"undefined"`
	Median     float64           `json:"median"`
	P90        float64           `json:"p90"`
	Max        float64           `json:"max"`
}

// summarizeRecords computes per metric type summaries over the headline values.
// NaN values are counted as undefined and left out of the statistics.
func summarizeRecords(records []schema.MetricRecord) []valueSummary {
	values := make(map[schema.MetricType]stats.Float64Data)
	undefined := make(map[schema.MetricType]int)
	counts := make(map[schema.MetricType]int)
	for _, r := range records {
		t := r.Key.MetricType
		counts[t]++
		if math.IsNaN(r.Value) {
			undefined[t]++
			continue
		}
		values[t] = append(values[t], r.Value)
	}

	var out []valueSummary
	for _, t := range schema.AllMetricTypes {
		if counts[t] == 0 {
			continue
		}
		s := valueSummary{MetricType: t, Records: counts[t], Undefined: undefined[t]}
		if data := values[t]; len(data) > 0 {
			s.Median, _ = stats.Median(data)
			s.P90, _ = stats.Percentile(data, 90)
			s.Max, _ = stats.Max(data)
		} else {
			s.Median, s.P90, s.Max = math.NaN(), math.NaN(), math.NaN()
		}
		out = append(out, s)
	}
	return out
}

// writeSummary prints one summary line per metric type.
func writeSummary(w io.Writer, summaries []valueSummary, fmtFloat func(float64) string) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-8s records: %d (undefined: %d)  median: %s  p90: %s  max: %s\n",
			s.MetricType, s.Records, s.Undefined, fmtFloat(s.Median), fmtFloat(s.P90), fmtFloat(s.Max)); err != nil {
			return err
		}
	}
	return nil
}
