package core

import (
	"sort"
	"time"

	"github.com/huangsam/cohort/core/algo"
	"github.com/huangsam/cohort/schema"
)

// Options controls how combinations are generated for one person.
type Options struct {
	Inclusions         schema.Inclusions
	Mode               schema.CombinationMode
	Methodologies      []schema.Methodology
	FollowUpPeriods    []int
	MetricPeriodMonths []int
	EvaluationDate     time.Time
	PersonLevel        bool
}

// DefaultOptions returns options with every dimension, both methodologies and the
// conventional periods, evaluated at the given date.
func DefaultOptions(evaluation time.Time) Options {
	return Options{
		Inclusions:         schema.AllInclusions(),
		Mode:               schema.TupleMode,
		Methodologies:      schema.AllMethodologies,
		FollowUpPeriods:    schema.DefaultFollowUpPeriods,
		MetricPeriodMonths: schema.DefaultMetricPeriodMonths,
		EvaluationDate:     evaluation,
		PersonLevel:        true,
	}
}

// MapCombinations emits every (metric key, value) pair for one person.
// It reads nothing but its arguments, so people can be processed in parallel.
func MapCombinations(h schema.PersonHistory, opts Options) []schema.MetricPair {
	returns := recidivismEvents(h.Cohorts)
	b := newCombinationBuilder(h.Person, opts).WithReturns(returns)
	for _, year := range h.Cohorts.Years() {
		b.AddRates(h.Cohorts[year])
	}
	b.AddReturns(returns)
	return b.Build()
}

// combinationBuilder accumulates the pairs of one person.
type combinationBuilder struct {
	person schema.Person
	opts   Options
	pairs  []schema.MetricPair

	// every return of the person, ordered by reincarceration date
	returns []schema.RecidivismReleaseEvent

	// PERSON windows already claimed by an earlier reincarceration
	claimed map[windowClaim]struct{}
}

type windowClaim struct {
	metricType schema.MetricType
	window     schema.Window
}

func newCombinationBuilder(p schema.Person, opts Options) *combinationBuilder {
	return &combinationBuilder{
		person:  p,
		opts:    opts,
		claimed: make(map[windowClaim]struct{}),
	}
}

// WithReturns sets the returns that later RATE windows are checked against.
func (b *combinationBuilder) WithReturns(returns []schema.RecidivismReleaseEvent) *combinationBuilder {
	b.returns = returns
	return b
}

// AddRates scores the RATE key space of every release in one cohort year.
// PERSON methodology keeps only the earliest release of the year. EVENT methodology
// also scores one extra template set per additional return inside each follow-up window.
func (b *combinationBuilder) AddRates(events []schema.ReleaseEvent) *combinationBuilder {
	personIdx := earliestRelease(events)
	for i, ev := range events {
		info := ev.Release()
		if info.ReleaseDate.IsZero() {
			continue
		}
		periods := algo.RelevantFollowUpPeriods(info.ReleaseDate, b.opts.EvaluationDate, b.opts.FollowUpPeriods)
		if len(periods) == 0 {
			continue
		}
		windows := make([]schema.Window, len(periods))
		for j, p := range periods {
			windows[j] = schema.Window{FollowUpPeriod: p}
		}

		tuples := characteristicSets(b.person, info, b.opts)
		for _, m := range b.opts.Methodologies {
			if m == schema.PersonMethodology && i != personIdx {
				continue
			}
			for _, ch := range tuples {
				b.scoreAll(KeySpace(ch, m, schema.RateMetric, windows), ev)
			}
			if m == schema.EventMethodology {
				b.addReturnsInWindows(ev, tuples, windows)
			}
		}
	}
	return b
}

// addReturnsInWindows scores the templates of each follow-up window once more for every
// return, other than the event's own, in [release, release + period years).
func (b *combinationBuilder) addReturnsInWindows(ev schema.ReleaseEvent, tuples []schema.Characteristics, windows []schema.Window) {
	e, ok := ev.(schema.RecidivismReleaseEvent)
	if !ok {
		return
	}
	for _, w := range windows {
		for _, r := range returnsInWindow(b.returns, e.ReleaseDate, algo.FollowUpWindowEnd(e.ReleaseDate, w.FollowUpPeriod)) {
			if isSameReturn(r, e) {
				continue
			}
			for _, ch := range tuples {
				for _, k := range KeySpace(ch, schema.EventMethodology, schema.RateMetric, []schema.Window{w}) {
					b.pairs = append(b.pairs, schema.MetricPair{Key: k, Value: Indicator(k.ReturnTemplate, r)})
				}
			}
		}
	}
}

// returnsInWindow returns the returns reincarcerated in [start, end).
func returnsInWindow(returns []schema.RecidivismReleaseEvent, start, end time.Time) []schema.RecidivismReleaseEvent {
	var out []schema.RecidivismReleaseEvent
	for _, r := range returns {
		d := r.ReincarcerationDate
		if !d.Before(start) && d.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

func isSameReturn(a, b schema.RecidivismReleaseEvent) bool {
	return a.ReleaseDate.Equal(b.ReleaseDate) && a.ReincarcerationDate.Equal(b.ReincarcerationDate)
}

// AddReturns scores the COUNT and LIBERTY key spaces of every reincarceration.
// Events must be in chronological order of reincarceration, so that PERSON methodology
// keeps the first reincarceration in each window.
func (b *combinationBuilder) AddReturns(events []schema.RecidivismReleaseEvent) *combinationBuilder {
	for _, e := range events {
		if e.ReleaseDate.IsZero() || e.ReincarcerationDate.IsZero() {
			continue
		}
		countWindows := algo.CountWindows(e.ReincarcerationDate, b.opts.EvaluationDate, b.opts.MetricPeriodMonths)
		libertyWindows := algo.LibertyBuckets(e.ReincarcerationDate)
		tuples := characteristicSets(b.person, e.ReleaseInfo, b.opts)
		// LIBERTY keys exist only for the templates the return matches
		matching := MatchingTemplates(e)

		for _, m := range b.opts.Methodologies {
			cw, lw := countWindows, libertyWindows
			if m == schema.PersonMethodology {
				cw = b.claim(schema.CountMetric, cw)
				lw = b.claim(schema.LibertyMetric, lw)
			}
			for _, ch := range tuples {
				b.scoreAll(KeySpace(ch, m, schema.CountMetric, cw), e)
				b.scoreAll(keysOver(ch, m, schema.LibertyMetric, lw, matching), e)
			}
			if m == schema.PersonMethodology && b.opts.PersonLevel && b.person.PersonID > 0 {
				b.addPersonLevel(e, cw, lw)
			}
		}
	}
	return b
}

// addPersonLevel emits the exact-match template once per window, keyed by person id.
func (b *combinationBuilder) addPersonLevel(e schema.RecidivismReleaseEvent, countWindows, libertyWindows []schema.Window) {
	ch := personLevelTuple(b.person, e.ReleaseInfo, b.opts.Inclusions)
	tmpl := ExactTemplate(e)
	for _, w := range countWindows {
		b.score(schema.MetricKey{Characteristics: ch, Window: w, ReturnTemplate: tmpl, Methodology: schema.PersonMethodology, MetricType: schema.CountMetric}, e)
	}
	for _, w := range libertyWindows {
		b.score(schema.MetricKey{Characteristics: ch, Window: w, ReturnTemplate: tmpl, Methodology: schema.PersonMethodology, MetricType: schema.LibertyMetric}, e)
	}
}

// claim returns the windows not yet claimed for the metric type and claims them.
func (b *combinationBuilder) claim(t schema.MetricType, windows []schema.Window) []schema.Window {
	var out []schema.Window
	for _, w := range windows {
		c := windowClaim{metricType: t, window: w}
		if _, ok := b.claimed[c]; ok {
			continue
		}
		b.claimed[c] = struct{}{}
		out = append(out, w)
	}
	return out
}

func (b *combinationBuilder) scoreAll(keys []schema.MetricKey, e schema.ReleaseEvent) {
	for _, k := range keys {
		b.score(k, e)
	}
}

func (b *combinationBuilder) score(k schema.MetricKey, e schema.ReleaseEvent) {
	if v, ok := Score(k, e); ok {
		b.pairs = append(b.pairs, schema.MetricPair{Key: k, Value: v})
	}
}

// Build returns the accumulated pairs.
func (b *combinationBuilder) Build() []schema.MetricPair {
	return b.pairs
}

// earliestRelease returns the index of the earliest dated release, or -1.
// Ties keep the first appended event.
func earliestRelease(events []schema.ReleaseEvent) int {
	idx := -1
	var earliest time.Time
	for i, ev := range events {
		d := ev.Release().ReleaseDate
		if d.IsZero() {
			continue
		}
		if idx == -1 || d.Before(earliest) {
			idx, earliest = i, d
		}
	}
	return idx
}

// recidivismEvents returns every recidivism event of the person ordered by reincarceration date.
func recidivismEvents(c schema.CohortMap) []schema.RecidivismReleaseEvent {
	var out []schema.RecidivismReleaseEvent
	for _, year := range c.Years() {
		for _, ev := range c[year] {
			if e, ok := ev.(schema.RecidivismReleaseEvent); ok {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReincarcerationDate.Before(out[j].ReincarcerationDate)
	})
	return out
}
