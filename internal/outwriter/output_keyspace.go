package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errKeySpaceParquet is returned for parquet output, which key space listings do not support.
var errKeySpaceParquet = errors.New("parquet output is not supported for key space listings")

// WriteKeySpace outputs a declared key space.
func WriteKeySpace(keys []schema.MetricKey, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fields := make([]map[string]any, len(keys))
			for i, k := range keys {
				fields[i] = k.Fields()
			}
			return writeJSON(w, fields)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, keyColumns, func(csvWriter *csv.Writer) error {
				for _, k := range keys {
					if err := csvWriter.Write(keyRow(k)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errKeySpaceParquet
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKeySpaceTable(w, keys, cfg)
		}, "Wrote table")
	}
}

func writeKeySpaceTable(w io.Writer, keys []schema.MetricKey, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Type", "Method", "Window", "Return"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, k := range keys {
		label := contract.GetPlainLabel(k.MetricType)
		if cfg.UseColors {
			label = contract.GetColorLabel(k.MetricType)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			label,
			string(k.Methodology),
			describeWindow(k),
			describeTemplate(k.ReturnTemplate),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d keys\n", len(keys))
	return err
}
