package core

import (
	"testing"

	"github.com/huangsam/cohort/schema"
	"github.com/stretchr/testify/assert"
)

func revocationEvent() schema.RecidivismReleaseEvent {
	return schema.RecidivismReleaseEvent{
		ReleaseInfo: schema.ReleaseInfo{
			StateCode:   "CA",
			ReleaseDate: date(2008, 9, 19),
		},
		ReincarcerationDate: date(2014, 5, 12),
		ReturnType:          schema.RevocationReturn,
		FromSupervisionType: schema.ParoleSupervision,
	}
}

func TestScoreRecidivismRate(t *testing.T) {
	e := revocationEvent()
	keys := KeySpace(schema.Characteristics{}, schema.EventMethodology, schema.RateMetric,
		DeclaredWindows(schema.RateMetric, schema.DefaultFollowUpPeriods, nil))

	for _, k := range keys {
		v, ok := Score(k, e)
		assert.True(t, ok, "RATE keys are always emitted")
		expected := 0.0
		if Indicator(k.ReturnTemplate, e) == 1 && k.FollowUpPeriod >= 6 {
			expected = 1
		}
		assert.Equal(t, expected, v, "period=%d template=%+v", k.FollowUpPeriod, k.ReturnTemplate)
	}
}

func TestScoreCountAndLiberty(t *testing.T) {
	e := revocationEvent()
	count := KeySpace(schema.Characteristics{}, schema.PersonMethodology, schema.CountMetric,
		[]schema.Window{{Year: 2014, Month: 5, MetricPeriodMonths: 1}})
	for _, k := range count {
		v, ok := Score(k, e)
		assert.True(t, ok)
		assert.Equal(t, Indicator(k.ReturnTemplate, e), v)
	}

	liberty := KeySpace(schema.Characteristics{}, schema.PersonMethodology, schema.LibertyMetric,
		[]schema.Window{{StartDate: "2014-05-01", EndDate: "2014-05-31"}})
	emitted := 0
	for _, k := range liberty {
		v, ok := Score(k, e)
		if !ok {
			assert.False(t, Matches(k.ReturnTemplate, e))
			continue
		}
		emitted++
		assert.Equal(t, 2061.0, v)
	}
	assert.Equal(t, 3, emitted, "all returns, REVOCATION, REVOCATION from PAROLE")
}

func TestScoreNonRecidivism(t *testing.T) {
	e := schema.NonRecidivismReleaseEvent{ReleaseInfo: schema.ReleaseInfo{ReleaseDate: date(2010, 1, 1)}}

	for _, mt := range schema.AllMetricTypes {
		v, ok := Score(schema.MetricKey{MetricType: mt, Window: schema.Window{FollowUpPeriod: 1}}, e)
		assert.Equal(t, 0.0, v)
		assert.Equal(t, mt == schema.RateMetric, ok, "metric type %s", mt)
	}
	assert.Equal(t, 0.0, Indicator(schema.ReturnTemplate{}, e))
}

func TestScoreAnniversary(t *testing.T) {
	e := schema.RecidivismReleaseEvent{
		ReleaseInfo:         schema.ReleaseInfo{ReleaseDate: date(2010, 3, 4)},
		ReincarcerationDate: date(2012, 3, 4),
		ReturnType:          schema.NewAdmissionReturn,
	}
	for period, expected := range map[int]float64{1: 0, 2: 1, 3: 1} {
		v, ok := Score(schema.MetricKey{MetricType: schema.RateMetric, Window: schema.Window{FollowUpPeriod: period}}, e)
		assert.True(t, ok)
		assert.Equal(t, expected, v, "period %d", period)
	}
}
