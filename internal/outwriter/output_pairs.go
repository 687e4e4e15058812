package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/parquet"
	"github.com/huangsam/cohort/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PairSink receives raw metric pairs batch by batch. Write is called serially.
type PairSink struct {
	file    *os.File
	cfg     *contract.Config
	written int

	write func([]schema.MetricPair) error
	close func() error

	// text mode buffers rows until Close
	rows [][]string
}

// NewPairSink opens the configured destination and prepares the writer for cfg.Output.
func NewPairSink(cfg *contract.Config) (*PairSink, error) {
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return nil, contract.ErrOutputFileRequired
	}
	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	s := &PairSink{file: file, cfg: cfg}

	switch cfg.Output {
	case schema.JSONOut:
		enc := json.NewEncoder(file)
		s.write = func(pairs []schema.MetricPair) error {
			for _, p := range pairs {
				if err := enc.Encode(pairObject(p)); err != nil {
					return fmt.Errorf("failed to encode pair: %w", err)
				}
			}
			return nil
		}
		s.close = func() error { return nil }
	case schema.CSVOut:
		fmtFloat, _ := createFormatters(cfg.Precision, false)
		csvWriter := csv.NewWriter(file)
		if err := csvWriter.Write(append(append([]string{}, keyColumns...), "value")); err != nil {
			s.closeFile()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		s.write = func(pairs []schema.MetricPair) error {
			for _, p := range pairs {
				if err := csvWriter.Write(append(keyRow(p.Key), fmtFloat(p.Value))); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		}
		s.close = func() error {
			csvWriter.Flush()
			return csvWriter.Error()
		}
	case schema.ParquetOut:
		pw := parquet.NewPairWriter(file)
		s.write = pw.Write
		s.close = pw.Close
	default:
		fmtFloat, _ := createFormatters(cfg.Precision, cfg.UseColors)
		s.write = func(pairs []schema.MetricPair) error {
			s.bufferRows(pairs, fmtFloat)
			return nil
		}
		s.close = s.renderTable
	}
	return s, nil
}

// Write hands one batch to the format writer.
func (s *PairSink) Write(pairs []schema.MetricPair) error {
	if err := s.write(pairs); err != nil {
		return err
	}
	s.written += len(pairs)
	return nil
}

// Close finishes the format and closes the destination file.
func (s *PairSink) Close() error {
	err := s.close()
	s.closeFile()
	if err == nil && s.file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 Wrote %d pairs to %s\n", s.written, s.cfg.OutputFile)
	}
	return err
}

func (s *PairSink) closeFile() {
	if s.file != os.Stdout {
		_ = s.file.Close()
	}
}

// bufferRows keeps table rows up to the configured limit.
func (s *PairSink) bufferRows(pairs []schema.MetricPair, fmtFloat func(float64) string) {
	sliceWidth := getMaxSliceWidth(s.cfg)
	for _, p := range pairs {
		if s.cfg.Limit > 0 && len(s.rows) >= s.cfg.Limit {
			return
		}
		label := contract.GetPlainLabel(p.Key.MetricType)
		if s.cfg.UseColors {
			label = contract.GetColorLabel(p.Key.MetricType)
		}
		s.rows = append(s.rows, []string{
			strconv.Itoa(len(s.rows) + 1),
			label,
			string(p.Key.Methodology),
			contract.TruncateText(describeSlice(p.Key.Characteristics), sliceWidth),
			describeWindow(p.Key),
			describeTemplate(p.Key.ReturnTemplate),
			fmtFloat(p.Value),
		})
	}
}

func (s *PairSink) renderTable() error {
	table := tablewriter.NewWriter(s.file)
	table.Header([]string{"#", "Type", "Method", "Slice", "Window", "Return", "Value"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(s.rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.file, "Showing %d of %d pairs\n", len(s.rows), s.written)
	return err
}

// pairObject flattens a pair for JSON Lines output.
func pairObject(p schema.MetricPair) map[string]any {
	m := p.Key.Fields()
	m["value"] = p.Value
	return m
}

var _ io.Closer = (*PairSink)(nil)
