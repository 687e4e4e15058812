package contract

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cohort/schema"
)

// ErrOutputFileRequired is returned when a binary output format has no destination file.
var ErrOutputFileRequired = errors.New("--output-file is required for parquet output")

// Undefined is shown in place of a NaN metric value.
const Undefined = "n/a"

// Color variables for console output.
var (
	RateColor      = color.New(color.FgMagenta, color.Bold) // RateColor marks follow-up rates.
	CountColor     = color.New(color.FgCyan)                // CountColor marks windowed counts.
	LibertyColor   = color.New(color.FgYellow)              // LibertyColor marks days at liberty.
	UndefinedColor = color.New(color.FgRed)                 // UndefinedColor marks values with no instances.
)

// GetPlainLabel returns the plain text label for a metric type.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(t schema.MetricType) string {
	switch t {
	case schema.RateMetric:
		return "Rate"
	case schema.CountMetric:
		return "Count"
	case schema.LibertyMetric:
		return "Liberty"
	default:
		return string(t)
	}
}

// GetColorLabel returns a colored metric type label for console output (table).
func GetColorLabel(t schema.MetricType) string {
	text := GetPlainLabel(t)

	switch t {
	case schema.RateMetric:
		return RateColor.Sprint(text)
	case schema.CountMetric:
		return CountColor.Sprint(text)
	case schema.LibertyMetric:
		return LibertyColor.Sprint(text)
	default:
		return text
	}
}

// FormatValue renders a metric value with the given precision, or Undefined for NaN.
func FormatValue(v float64, precision int, useColors bool) string {
	if math.IsNaN(v) {
		if useColors {
			return UndefinedColor.Sprint(Undefined)
		}
		return Undefined
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cohort_runs.db"
	}
	return filepath.Join(homeDir, ".cohort_runs.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
