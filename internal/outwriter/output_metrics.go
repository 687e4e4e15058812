package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/cohort/core/agg"
	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/schema"
)

// MetricDefinition describes one metric type or auxiliary accumulator.
type MetricDefinition struct {
	Name        string   `json:"name"`
	Accumulator string   `json:"accumulator"`
	Purpose     string   `json:"purpose"`
	Window      string   `json:"window,omitempty"`
	Fields      []string `json:"fields"`
}

// MetricsRenderModel is everything the metrics command prints.
type MetricsRenderModel struct {
	Description  string             `json:"description"`
	Metrics      []MetricDefinition `json:"metrics"`
	Accumulators []MetricDefinition `json:"accumulators"`
}

var metricPurposes = map[schema.MetricType]struct{ purpose, window string }{
	schema.RateMetric: {
		"Share of releases followed by a reincarceration within N years",
		"follow_up_period",
	},
	schema.CountMetric: {
		"Number of reincarcerations inside a trailing window of months",
		"year, month, metric_period_months",
	},
	schema.LibertyMetric: {
		"Average days spent at liberty between release and reincarceration",
		"start_date, end_date",
	},
}

// WriteMetricsDefinitions displays the definitions of every metric type and accumulator.
func WriteMetricsDefinitions(cfg *contract.Config) error {
	model := buildMetricsRenderModel()

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, model)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model, cfg)
		}, "Wrote text")
	}
}

// buildMetricsRenderModel constructs the render model from the registered accumulators.
func buildMetricsRenderModel() *MetricsRenderModel {
	model := &MetricsRenderModel{
		Description: "Release events are scored into metric pairs, one per key, and reduced per key by an accumulator.",
	}
	for _, t := range schema.AllMetricTypes {
		acc := agg.ForMetricType(t)
		p := metricPurposes[t]
		model.Metrics = append(model.Metrics, MetricDefinition{
			Name:        string(t),
			Accumulator: acc.Name(),
			Purpose:     p.purpose,
			Window:      p.window,
			Fields:      fieldNames(acc),
		})
	}

	extras := []struct {
		acc     agg.Accumulator
		purpose string
	}{
		{agg.SupervisionSuccess{}, "Share of projected supervision completions that succeeded"},
		{agg.ScoreChange{}, "Average change in assessment score"},
	}
	for _, e := range extras {
		model.Accumulators = append(model.Accumulators, MetricDefinition{
			Name:        e.acc.Name(),
			Accumulator: e.acc.Name(),
			Purpose:     e.purpose,
			Fields:      fieldNames(e.acc),
		})
	}
	return model
}

func fieldNames(acc agg.Accumulator) []string {
	var names []string
	for _, f := range acc.Fields(agg.Identity()) {
		names = append(names, f.Name)
	}
	return names
}

func writeMetricsText(w io.Writer, model *MetricsRenderModel, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "📊 Recidivism Metrics\n=====================\n\n%s\n\n", model.Description); err != nil {
		return err
	}
	for _, m := range model.Metrics {
		label := contract.GetPlainLabel(schema.MetricType(m.Name))
		if cfg.UseColors {
			label = contract.GetColorLabel(schema.MetricType(m.Name))
		}
		if _, err := fmt.Fprintf(w, "%s (%s): %s\n   Window: %s\n   Fields: %s\n\n",
			label, m.Name, m.Purpose, m.Window, strings.Join(m.Fields, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "🧮 Other accumulators\n"); err != nil {
		return err
	}
	for _, a := range model.Accumulators {
		if _, err := fmt.Fprintf(w, "%s: %s\n   Fields: %s\n", a.Name, a.Purpose, strings.Join(a.Fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVMetrics(w io.Writer, model *MetricsRenderModel) error {
	header := []string{"kind", "name", "accumulator", "purpose", "window", "fields"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		write := func(kind string, defs []MetricDefinition) error {
			for _, d := range defs {
				if err := csvWriter.Write([]string{kind, d.Name, d.Accumulator, d.Purpose, d.Window, strings.Join(d.Fields, ";")}); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		}
		if err := write("metric", model.Metrics); err != nil {
			return err
		}
		return write("accumulator", model.Accumulators)
	})
}
