package core

import (
	"testing"

	"github.com/huangsam/cohort/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnTemplates(t *testing.T) {
	templates := ReturnTemplates()
	require.Len(t, templates, 23)
	assert.True(t, templates[0].IsAllReturns())

	seen := make(map[schema.ReturnTemplate]struct{}, len(templates))
	for _, tmpl := range templates {
		_, dup := seen[tmpl]
		assert.False(t, dup, "duplicate template %+v", tmpl)
		seen[tmpl] = struct{}{}
		if tmpl.FromSupervisionType != "" || tmpl.SourceViolationType != "" {
			assert.Equal(t, schema.RevocationReturn, tmpl.ReturnType)
		}
	}
}

func TestMatchingTemplates(t *testing.T) {
	revocation := schema.RecidivismReleaseEvent{
		ReturnType:          schema.RevocationReturn,
		FromSupervisionType: schema.ParoleSupervision,
		SourceViolationType: schema.TechnicalViolation,
	}
	assert.ElementsMatch(t, []schema.ReturnTemplate{
		{},
		{ReturnType: schema.RevocationReturn},
		{ReturnType: schema.RevocationReturn, FromSupervisionType: schema.ParoleSupervision},
		{ReturnType: schema.RevocationReturn, SourceViolationType: schema.TechnicalViolation},
		{ReturnType: schema.RevocationReturn, FromSupervisionType: schema.ParoleSupervision, SourceViolationType: schema.TechnicalViolation},
	}, MatchingTemplates(revocation))

	admission := schema.RecidivismReleaseEvent{ReturnType: schema.NewAdmissionReturn}
	assert.ElementsMatch(t, []schema.ReturnTemplate{
		{},
		{ReturnType: schema.NewAdmissionReturn},
	}, MatchingTemplates(admission))

	partial := schema.RecidivismReleaseEvent{ReturnType: schema.RevocationReturn, FromSupervisionType: schema.ProbationSupervision}
	assert.Len(t, MatchingTemplates(partial), 3)
}

func TestExactTemplate(t *testing.T) {
	e := schema.RecidivismReleaseEvent{
		ReturnType:          schema.RevocationReturn,
		FromSupervisionType: schema.ParoleSupervision,
	}
	assert.Equal(t, schema.ReturnTemplate{ReturnType: schema.RevocationReturn, FromSupervisionType: schema.ParoleSupervision}, ExactTemplate(e))
	assert.True(t, Matches(ExactTemplate(e), e))
}

func TestDeclaredWindows(t *testing.T) {
	assert.Equal(t, []schema.Window{{FollowUpPeriod: 1}, {FollowUpPeriod: 5}},
		DeclaredWindows(schema.RateMetric, []int{1, 5}, nil))
	assert.Equal(t, []schema.Window{{MetricPeriodMonths: 1}, {MetricPeriodMonths: 3}, {MetricPeriodMonths: 36}},
		DeclaredWindows(schema.CountMetric, nil, []int{1, 3, 36}))
	assert.Equal(t, []schema.Window{{}}, DeclaredWindows(schema.LibertyMetric, []int{1}, []int{3}))
}

func TestKeySpace(t *testing.T) {
	ch := schema.Characteristics{Gender: schema.Female}
	windows := DeclaredWindows(schema.RateMetric, schema.DefaultFollowUpPeriods, nil)
	keys := KeySpace(ch, schema.EventMethodology, schema.RateMetric, windows)
	require.Len(t, keys, len(windows)*23)

	encoded := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		assert.Equal(t, ch, k.Characteristics)
		assert.Equal(t, schema.EventMethodology, k.Methodology)
		assert.Equal(t, schema.RateMetric, k.MetricType)
		encoded[k.Encode()] = struct{}{}
	}
	assert.Len(t, encoded, len(keys), "every key encodes uniquely")
}
