package core

import "github.com/huangsam/cohort/schema"

// ReturnTemplates returns the declared return-type space in a fixed order:
// all returns, NEW_ADMISSION, bare REVOCATION, then REVOCATION crossed with each
// from-supervision type, each violation type, and each (supervision, violation) pair.
func ReturnTemplates() []schema.ReturnTemplate {
	templates := []schema.ReturnTemplate{
		{},
		{ReturnType: schema.NewAdmissionReturn},
		{ReturnType: schema.RevocationReturn},
	}
	for _, s := range schema.AllFromSupervisionTypes {
		templates = append(templates, schema.ReturnTemplate{ReturnType: schema.RevocationReturn, FromSupervisionType: s})
	}
	for _, v := range schema.AllViolationTypes {
		templates = append(templates, schema.ReturnTemplate{ReturnType: schema.RevocationReturn, SourceViolationType: v})
	}
	for _, s := range schema.AllFromSupervisionTypes {
		for _, v := range schema.AllViolationTypes {
			templates = append(templates, schema.ReturnTemplate{
				ReturnType:          schema.RevocationReturn,
				FromSupervisionType: s,
				SourceViolationType: v,
			})
		}
	}
	return templates
}

// declaredTemplates is computed once; the template space never changes at runtime.
var declaredTemplates = ReturnTemplates()

// Matches reports whether every present sub-field of the template equals the event's value.
func Matches(t schema.ReturnTemplate, e schema.RecidivismReleaseEvent) bool {
	if t.ReturnType == "" {
		return true
	}
	if t.ReturnType != e.ReturnType {
		return false
	}
	if t.FromSupervisionType != "" && t.FromSupervisionType != e.FromSupervisionType {
		return false
	}
	if t.SourceViolationType != "" && t.SourceViolationType != e.SourceViolationType {
		return false
	}
	return true
}

// MatchingTemplates returns the declared templates that the event matches.
func MatchingTemplates(e schema.RecidivismReleaseEvent) []schema.ReturnTemplate {
	var out []schema.ReturnTemplate
	for _, t := range declaredTemplates {
		if Matches(t, e) {
			out = append(out, t)
		}
	}
	return out
}

// ExactTemplate returns the most specific template describing the event.
func ExactTemplate(e schema.RecidivismReleaseEvent) schema.ReturnTemplate {
	t := schema.ReturnTemplate{ReturnType: e.ReturnType}
	if e.ReturnType == schema.RevocationReturn {
		t.FromSupervisionType = e.FromSupervisionType
		t.SourceViolationType = e.SourceViolationType
	}
	return t
}

// DeclaredWindows returns the window shapes a metric type is declared over.
// LIBERTY windows depend on the event, so a single empty window stands in for them.
func DeclaredWindows(t schema.MetricType, followUpPeriods, metricPeriodMonths []int) []schema.Window {
	var windows []schema.Window
	switch t {
	case schema.RateMetric:
		for _, p := range followUpPeriods {
			windows = append(windows, schema.Window{FollowUpPeriod: p})
		}
	case schema.CountMetric:
		windows = append(windows, schema.Window{MetricPeriodMonths: 1})
		for _, m := range metricPeriodMonths {
			if m > 1 {
				windows = append(windows, schema.Window{MetricPeriodMonths: m})
			}
		}
	case schema.LibertyMetric:
		windows = append(windows, schema.Window{})
	}
	return windows
}

// KeySpace enumerates every metric key for one tuple, methodology and metric type over the windows.
// It does not depend on any event.
func KeySpace(ch schema.Characteristics, m schema.Methodology, t schema.MetricType, windows []schema.Window) []schema.MetricKey {
	return keysOver(ch, m, t, windows, declaredTemplates)
}

// keysOver crosses the windows with the given templates.
func keysOver(ch schema.Characteristics, m schema.Methodology, t schema.MetricType, windows []schema.Window, templates []schema.ReturnTemplate) []schema.MetricKey {
	keys := make([]schema.MetricKey, 0, len(windows)*len(templates))
	for _, w := range windows {
		for _, tmpl := range templates {
			keys = append(keys, schema.MetricKey{
				Characteristics: ch,
				Window:          w,
				ReturnTemplate:  tmpl,
				Methodology:     m,
				MetricType:      t,
			})
		}
	}
	return keys
}
