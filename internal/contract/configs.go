package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cohort/schema"
)

// Default values for configuration.
const (
	DefaultPrecision       = 2
	MaxPrecision           = 4
	DefaultLimit           = 0
	DefaultCombinationMode = schema.TupleMode
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a calculation.
// This struct remains the "final, validated" config.
type Config struct {
	InputPaths []string
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Limit      int // 0 = all rows
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	EvaluationDate     time.Time
	FollowUpPeriods    []int
	MetricPeriodMonths []int
	Inclusions         schema.Inclusions
	CombinationMode    schema.CombinationMode
	Methodologies      []schema.Methodology
	PersonLevel        bool

	// Only used by the keyspace command
	KeyspaceMethodology schema.Methodology
	KeyspaceMetricType  schema.MetricType
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStrs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers            int    `mapstructure:"workers"`
	Precision          int    `mapstructure:"precision"`
	Output             string `mapstructure:"output"`
	OutputFile         string `mapstructure:"output-file"`
	Limit              int    `mapstructure:"limit"`
	Width              int    `mapstructure:"width"`
	Color              string `mapstructure:"color"`
	RunBackend         string `mapstructure:"run-backend"`
	RunDBConnect       string `mapstructure:"run-db-connect"`
	EvaluationDate     string `mapstructure:"evaluation-date"`
	FollowUpPeriods    string `mapstructure:"follow-up-periods"`
	MetricPeriodMonths string `mapstructure:"metric-period-months"`
	Include            string `mapstructure:"include"`
	Exclude            string `mapstructure:"exclude"`
	CombinationMode    string `mapstructure:"combination-mode"`
	Methodologies      string `mapstructure:"methodologies"`
	PersonLevel        string `mapstructure:"person-level"`

	// --- Fields from keyspaceCmd.Flags() ---
	Methodology string `mapstructure:"methodology"`
	MetricType  string `mapstructure:"metric-type"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.InputPaths = slices.Clone(c.InputPaths)
	clone.FollowUpPeriods = slices.Clone(c.FollowUpPeriods)
	clone.MetricPeriodMonths = slices.Clone(c.MetricPeriodMonths)
	clone.Methodologies = slices.Clone(c.Methodologies)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processEngineOptions(cfg, input); err != nil {
		return err
	}
	if err := processInclusions(cfg, input); err != nil {
		return err
	}
	return processKeyspaceOptions(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the run tracking backend.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// validateSimpleInputs processes and validates the output and pool fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPaths = input.InputPathStrs
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Limit Validation ---
	if input.Limit < 0 {
		return fmt.Errorf("limit cannot be negative (received %d)", input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return ErrOutputFileRequired
	}

	return nil
}

// processEngineOptions handles the evaluation date, windows, methodologies and combination mode.
func processEngineOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.EvaluationDate = Today()
	if s := strings.TrimSpace(input.EvaluationDate); s != "" {
		d, err := time.Parse(schema.DateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid evaluation date '%s'. Expected YYYY-MM-DD: %w", s, err)
		}
		cfg.EvaluationDate = d
	}

	periods, err := ParseIntList(input.FollowUpPeriods, schema.DefaultFollowUpPeriods)
	if err != nil {
		return fmt.Errorf("invalid follow-up periods: %w", err)
	}
	cfg.FollowUpPeriods = periods

	months, err := ParseIntList(input.MetricPeriodMonths, schema.DefaultMetricPeriodMonths)
	if err != nil {
		return fmt.Errorf("invalid metric period months: %w", err)
	}
	cfg.MetricPeriodMonths = months

	methodologies, err := ParseMethodologies(input.Methodologies)
	if err != nil {
		return err
	}
	cfg.Methodologies = methodologies

	cfg.CombinationMode = DefaultCombinationMode
	if s := strings.TrimSpace(input.CombinationMode); s != "" {
		cfg.CombinationMode = schema.CombinationMode(strings.ToLower(s))
		if _, ok := schema.ValidCombinationModes[cfg.CombinationMode]; !ok {
			return fmt.Errorf("invalid combination mode '%s'. must be tuple, powerset", s)
		}
	}

	cfg.PersonLevel = true
	if input.PersonLevel != "" {
		personLevel, err := ParseBoolString(input.PersonLevel)
		if err != nil {
			return fmt.Errorf("invalid --person-level value: %w", err)
		}
		cfg.PersonLevel = personLevel
	}
	return nil
}

// processInclusions applies --include then --exclude on top of every dimension being on.
func processInclusions(cfg *Config, input *ConfigRawInput) error {
	inc, err := resolveInclusions(input.Include, input.Exclude)
	if err != nil {
		return err
	}
	cfg.Inclusions = inc
	return nil
}

// RevalidateCalculate re-applies the per-request overrides of a calculation on a cloned config.
// Empty values keep what cfg already holds.
func RevalidateCalculate(cfg *Config, include, exclude, evaluationDate string) error {
	if include != "" || exclude != "" {
		inc, err := resolveInclusions(include, exclude)
		if err != nil {
			return err
		}
		cfg.Inclusions = inc
	}
	if s := strings.TrimSpace(evaluationDate); s != "" {
		d, err := time.Parse(schema.DateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid evaluation date '%s'. Expected YYYY-MM-DD: %w", s, err)
		}
		cfg.EvaluationDate = d
	}
	return nil
}

func resolveInclusions(includeStr, excludeStr string) (schema.Inclusions, error) {
	inc := schema.AllInclusions()

	include, err := ParseDimensions(includeStr)
	if err != nil {
		return inc, fmt.Errorf("invalid --include value: %w", err)
	}
	if len(include) > 0 {
		inc = schema.Inclusions{}
		for _, d := range include {
			inc.Set(d, true)
		}
	}

	exclude, err := ParseDimensions(excludeStr)
	if err != nil {
		return inc, fmt.Errorf("invalid --exclude value: %w", err)
	}
	for _, d := range exclude {
		inc.Set(d, false)
	}
	return inc, nil
}

// processKeyspaceOptions handles the keyspace command flags.
func processKeyspaceOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.KeyspaceMethodology = schema.PersonMethodology
	if s := strings.TrimSpace(input.Methodology); s != "" {
		cfg.KeyspaceMethodology = schema.Methodology(strings.ToUpper(s))
		if _, ok := schema.ValidMethodologies[cfg.KeyspaceMethodology]; !ok {
			return fmt.Errorf("invalid methodology '%s'. must be PERSON, EVENT", s)
		}
	}
	cfg.KeyspaceMetricType = schema.RateMetric
	if s := strings.TrimSpace(input.MetricType); s != "" {
		cfg.KeyspaceMetricType = schema.MetricType(strings.ToUpper(s))
		if _, ok := schema.ValidMetricTypes[cfg.KeyspaceMetricType]; !ok {
			return fmt.Errorf("invalid metric type '%s'. must be RATE, COUNT, LIBERTY", s)
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseIntList parses a comma-separated list of positive integers into a sorted,
// deduplicated slice. An empty string yields a copy of def.
func ParseIntList(s string, def []int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(def), nil
	}
	var out []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an integer", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("values must be positive (received %d)", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in '%s'", s)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ParseMethodologies parses a comma-separated methodology list. Empty means both.
func ParseMethodologies(s string) ([]schema.Methodology, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(schema.AllMethodologies), nil
	}
	var out []schema.Methodology
	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		m := schema.Methodology(part)
		if _, ok := schema.ValidMethodologies[m]; !ok {
			return nil, fmt.Errorf("invalid methodology '%s'. must be PERSON, EVENT", part)
		}
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no methodologies in '%s'", s)
	}
	return out, nil
}

// ParseDimensions parses a comma-separated list of characteristic dimensions.
func ParseDimensions(s string) ([]schema.Dimension, error) {
	var out []schema.Dimension
	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d := schema.Dimension(part)
		if _, ok := schema.ValidDimensions[d]; !ok {
			return nil, fmt.Errorf("unknown dimension '%s'", part)
		}
		out = append(out, d)
	}
	return out, nil
}

// Today returns midnight UTC of the current date.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
