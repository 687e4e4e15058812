package core

import (
	"sort"

	"github.com/huangsam/cohort/core/agg"
	"github.com/huangsam/cohort/schema"
)

// Assemble converts a reduced key into a typed metric record.
// A key with no dimensions is the unsliced population total.
func Assemble(key schema.MetricKey, s agg.State) schema.MetricRecord {
	acc := agg.ForMetricType(key.MetricType)
	return schema.MetricRecord{
		Key:     key,
		Count:   s.Count,
		Sum:     s.Sum,
		Value:   acc.Value(s),
		Fields:  acc.Fields(s),
		Encoded: key.Encode(),
	}
}

// AssembleTable converts a reduction table into records ordered by encoded key.
func AssembleTable(t agg.Table) []schema.MetricRecord {
	records := make([]schema.MetricRecord, 0, len(t))
	for k, s := range t {
		records = append(records, Assemble(k, s))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Encoded < records[j].Encoded
	})
	return records
}
