// Package agg has the streaming accumulators that reduce metric pairs into final values.
package agg

import (
	"math"

	"github.com/huangsam/cohort/schema"
	"gonum.org/v1/gonum/floats"
)

// State is the (sum, count) accumulator. The zero value is the identity.
type State struct {
	Sum   float64
	Count int64
}

// Identity returns the empty accumulator.
func Identity() State {
	return State{}
}

// Add folds one input value into the state.
func (s State) Add(v float64) State {
	return State{Sum: s.Sum + v, Count: s.Count + 1}
}

// Combine merges two states. It is associative and commutative.
func (s State) Combine(o State) State {
	return State{Sum: s.Sum + o.Sum, Count: s.Count + o.Count}
}

// Merge combines any number of states.
func Merge(states ...State) State {
	if len(states) == 0 {
		return Identity()
	}
	sums := make([]float64, len(states))
	var count int64
	for i, s := range states {
		sums[i] = s.Sum
		count += s.Count
	}
	return State{Sum: floats.Sum(sums), Count: count}
}

// Extract returns the mean, or NaN when nothing was added.
func (s State) Extract() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Count)
}

// Total returns the running sum with no division step.
func (s State) Total() float64 {
	return s.Sum
}

// Accumulator names the output fields of a reduced state.
type Accumulator interface {
	Name() string
	Fields(s State) []schema.MetricField
	Value(s State) float64
}

// Sum is the plain summing accumulator.
type Sum struct{}

func (Sum) Name() string { return "count" }

func (Sum) Value(s State) float64 { return s.Total() }

func (Sum) Fields(s State) []schema.MetricField {
	return []schema.MetricField{{Name: "count", Value: s.Total()}}
}

// RecidivismRate averages 0/1 return indicators over releases.
type RecidivismRate struct{}

func (RecidivismRate) Name() string { return "recidivism_rate" }

func (RecidivismRate) Value(s State) float64 { return s.Extract() }

func (RecidivismRate) Fields(s State) []schema.MetricField {
	return []schema.MetricField{
		{Name: "total_releases", Value: float64(s.Count)},
		{Name: "recidivated_releases", Value: s.Sum},
		{Name: "recidivism_rate", Value: s.Extract()},
	}
}

// Liberty averages days at liberty over returns.
type Liberty struct{}

func (Liberty) Name() string { return "avg_liberty" }

func (Liberty) Value(s State) float64 { return s.Extract() }

func (Liberty) Fields(s State) []schema.MetricField {
	return []schema.MetricField{
		{Name: "returns", Value: float64(s.Count)},
		{Name: "avg_liberty", Value: s.Extract()},
	}
}

// SupervisionSuccess averages 0/1 successful completions over projected completions.
type SupervisionSuccess struct{}

func (SupervisionSuccess) Name() string { return "success_rate" }

func (SupervisionSuccess) Value(s State) float64 { return s.Extract() }

func (SupervisionSuccess) Fields(s State) []schema.MetricField {
	return []schema.MetricField{
		{Name: "successful_completion_count", Value: s.Sum},
		{Name: "projected_completion_count", Value: float64(s.Count)},
		{Name: "success_rate", Value: s.Extract()},
	}
}

// ScoreChange averages assessment score deltas.
type ScoreChange struct{}

func (ScoreChange) Name() string { return "average_score_change" }

func (ScoreChange) Value(s State) float64 { return s.Extract() }

func (ScoreChange) Fields(s State) []schema.MetricField {
	return []schema.MetricField{
		{Name: "count", Value: float64(s.Count)},
		{Name: "average_score_change", Value: s.Extract()},
	}
}

// ForMetricType returns the accumulator used to report a metric type.
// COUNT metrics are plain sums of matching returns.
func ForMetricType(t schema.MetricType) Accumulator {
	switch t {
	case schema.RateMetric:
		return RecidivismRate{}
	case schema.LibertyMetric:
		return Liberty{}
	default:
		return Sum{}
	}
}

// Table is a keyed reduction table owned by exactly one worker.
type Table map[schema.MetricKey]State

// Add folds one pair into the table.
func (t Table) Add(p schema.MetricPair) {
	t[p.Key] = t[p.Key].Add(p.Value)
}

// AddAll folds many pairs into the table.
func (t Table) AddAll(pairs []schema.MetricPair) {
	for _, p := range pairs {
		t.Add(p)
	}
}

// MergeTables returns a new table holding the key-wise combination of all tables.
// The inputs are not modified.
func MergeTables(tables ...Table) Table {
	size := 0
	for _, t := range tables {
		size = max(size, len(t))
	}
	parts := make(map[schema.MetricKey][]State, size)
	for _, t := range tables {
		for k, s := range t {
			parts[k] = append(parts[k], s)
		}
	}
	out := make(Table, len(parts))
	for k, states := range parts {
		out[k] = Merge(states...)
	}
	return out
}

// MergeTree reduces tables pairwise until one is left.
func MergeTree(tables []Table) Table {
	switch len(tables) {
	case 0:
		return Table{}
	case 1:
		return MergeTables(tables[0])
	}
	for len(tables) > 1 {
		next := make([]Table, 0, (len(tables)+1)/2)
		for i := 0; i < len(tables); i += 2 {
			if i+1 < len(tables) {
				next = append(next, MergeTables(tables[i], tables[i+1]))
			} else {
				next = append(next, tables[i])
			}
		}
		tables = next
	}
	return tables[0]
}
