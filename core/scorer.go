package core

import (
	"github.com/huangsam/cohort/core/algo"
	"github.com/huangsam/cohort/schema"
)

// Indicator returns 1 when the event matches the template and 0 otherwise.
// Non-recidivism events never match.
func Indicator(t schema.ReturnTemplate, event schema.ReleaseEvent) float64 {
	switch e := event.(type) {
	case schema.RecidivismReleaseEvent:
		if Matches(t, e) {
			return 1
		}
	case schema.NonRecidivismReleaseEvent:
	}
	return 0
}

// Score returns the value an event contributes to a key, and whether the key is emitted at all.
//
// RATE keys are always emitted; they score 1 only when the template matches and the return
// happened within the follow-up period. COUNT and LIBERTY keys exist only for recidivism events,
// and LIBERTY keys only where the template matches, carrying the days at liberty.
func Score(key schema.MetricKey, event schema.ReleaseEvent) (float64, bool) {
	switch e := event.(type) {
	case schema.NonRecidivismReleaseEvent:
		return 0, key.MetricType == schema.RateMetric
	case schema.RecidivismReleaseEvent:
		match := Matches(key.ReturnTemplate, e)
		switch key.MetricType {
		case schema.RateMetric:
			earliest, ok := algo.EarliestRecidivatedFollowUpPeriod(e.ReleaseDate, e.ReincarcerationDate)
			if match && ok && key.FollowUpPeriod >= earliest {
				return 1, true
			}
			return 0, true
		case schema.CountMetric:
			if match {
				return 1, true
			}
			return 0, true
		case schema.LibertyMetric:
			if match {
				return float64(e.DaysAtLiberty()), true
			}
			return 0, false
		}
	}
	return 0, false
}
