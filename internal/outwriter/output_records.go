package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/parquet"
	"github.com/huangsam/cohort/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteMetricRecords outputs the calculated records, dispatching based on the output format configured.
func WriteMetricRecords(output *schema.CalculationOutput, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONRecords(w, output)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		fmtFloat, intFmt := createFormatters(cfg.Precision, false)
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRecords(w, output.Records, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return contract.ErrOutputFileRequired
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteMetrics(w, output.Records)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		fmtFloat, intFmt := createFormatters(cfg.Precision, cfg.UseColors)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsTable(w, output, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeJSONRecords writes the totals and every record as a flat object.
func writeJSONRecords(w io.Writer, output *schema.CalculationOutput) error {
	records := make([]map[string]any, len(output.Records))
	for i, r := range output.Records {
		records[i] = r.AsMap()
	}
	return writeJSON(w, map[string]any{
		"totals":  output.Totals,
		"records": records,
	})
}

// writeCSVRecords writes one row per record with the key spread across fixed columns.
func writeCSVRecords(w io.Writer, records []schema.MetricRecord, fmtFloat func(float64) string, intFmt string) error {
	header := append(append([]string{}, keyColumns...), "count", "sum", "value")
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range records {
			row := append(keyRow(r.Key),
				fmt.Sprintf(intFmt, r.Count),
				fmtFloat(r.Sum),
				csvValue(r.Value, fmtFloat),
			)
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// csvValue leaves undefined values as empty cells.
func csvValue(v float64, fmtFloat func(float64) string) string {
	if schema.NullableFloat(v) == nil {
		return ""
	}
	return fmtFloat(v)
}

// writeRecordsTable generates and writes the human-readable table.
func writeRecordsTable(w io.Writer, output *schema.CalculationOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Type", "Method", "Slice", "Window", "Return", "N", "Value"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	records := output.Records
	if cfg.Limit > 0 && len(records) > cfg.Limit {
		records = records[:cfg.Limit]
	}
	sliceWidth := getMaxSliceWidth(cfg)

	var data [][]string
	for i, r := range records {
		label := contract.GetPlainLabel(r.Key.MetricType)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Key.MetricType)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			label,
			string(r.Key.Methodology),
			contract.TruncateText(describeSlice(r.Key.Characteristics), sliceWidth),
			describeWindow(r.Key),
			describeTemplate(r.Key.ReturnTemplate),
			fmt.Sprintf(intFmt, r.Count),
			fmtFloat(r.Value),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d of %d records (people: %d, pairs: %d)\n",
		len(records), len(output.Records), output.Totals.People, output.Totals.Pairs); err != nil {
		return err
	}
	if err := writeSummary(w, summarizeRecords(output.Records), fmtFloat); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Calculation completed in %v with %d workers. Run backend: %s\n", duration, cfg.Workers, cfg.RunBackend); err != nil {
		return err
	}
	return nil
}
