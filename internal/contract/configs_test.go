package contract

import (
	"testing"
	"time"

	"github.com/huangsam/cohort/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns the raw input the root command produces with default flags.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Workers:    4,
		Precision:  DefaultPrecision,
		Output:     "text",
		Color:      "yes",
		RunBackend: "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid workers (zero)", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid precision (zero)", mutate: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: true},
		{name: "invalid precision (too high)", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }},
		{name: "negative limit", mutate: func(in *ConfigRawInput) { in.Limit = -1 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "blue" }, expectError: true},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.RunBackend = "oracle" }, expectError: true},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.RunBackend = "mysql" }, expectError: true},
		{name: "bad evaluation date", mutate: func(in *ConfigRawInput) { in.EvaluationDate = "01/02/2020" }, expectError: true},
		{name: "bad follow-up periods", mutate: func(in *ConfigRawInput) { in.FollowUpPeriods = "1,x" }, expectError: true},
		{name: "zero metric period", mutate: func(in *ConfigRawInput) { in.MetricPeriodMonths = "0,3" }, expectError: true},
		{name: "unknown dimension", mutate: func(in *ConfigRawInput) { in.Exclude = "height" }, expectError: true},
		{name: "unknown methodology", mutate: func(in *ConfigRawInput) { in.Methodologies = "HOUSEHOLD" }, expectError: true},
		{name: "unknown combination mode", mutate: func(in *ConfigRawInput) { in.CombinationMode = "all" }, expectError: true},
		{name: "invalid person-level", mutate: func(in *ConfigRawInput) { in.PersonLevel = "sometimes" }, expectError: true},
		{name: "unknown keyspace metric type", mutate: func(in *ConfigRawInput) { in.MetricType = "POPULATION" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, schema.DefaultFollowUpPeriods, cfg.FollowUpPeriods)
	assert.Equal(t, schema.DefaultMetricPeriodMonths, cfg.MetricPeriodMonths)
	assert.Equal(t, schema.AllMethodologies, cfg.Methodologies)
	assert.Equal(t, schema.AllInclusions(), cfg.Inclusions)
	assert.Equal(t, schema.TupleMode, cfg.CombinationMode)
	assert.True(t, cfg.PersonLevel)
	assert.Equal(t, Today(), cfg.EvaluationDate)
	assert.Equal(t, schema.PersonMethodology, cfg.KeyspaceMethodology)
	assert.Equal(t, schema.RateMetric, cfg.KeyspaceMetricType)
}

func TestProcessAndValidateOverrides(t *testing.T) {
	input := validInput()
	input.EvaluationDate = "2018-01-26"
	input.FollowUpPeriods = "5, 1,3,3"
	input.Include = "gender,race,age_bucket"
	input.Exclude = "age_bucket"
	input.Methodologies = "event"
	input.CombinationMode = "POWERSET"
	input.PersonLevel = "no"
	input.Methodology = "event"
	input.MetricType = "liberty"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, time.Date(2018, 1, 26, 0, 0, 0, 0, time.UTC), cfg.EvaluationDate)
	assert.Equal(t, []int{1, 3, 5}, cfg.FollowUpPeriods)
	assert.Equal(t, schema.Inclusions{Gender: true, Race: true}, cfg.Inclusions)
	assert.Equal(t, []schema.Methodology{schema.EventMethodology}, cfg.Methodologies)
	assert.Equal(t, schema.PowersetMode, cfg.CombinationMode)
	assert.False(t, cfg.PersonLevel)
	assert.Equal(t, schema.EventMethodology, cfg.KeyspaceMethodology)
	assert.Equal(t, schema.LibertyMetric, cfg.KeyspaceMetricType)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		conn        string
		expectError bool
	}{
		{"sqlite accepts empty", schema.SQLiteBackend, "", false},
		{"none accepts anything", schema.NoneBackend, "junk", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/cohort", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/cohort", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=cohort", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		InputPaths:      []string{"a.json"},
		FollowUpPeriods: []int{1, 2},
		Methodologies:   []schema.Methodology{schema.PersonMethodology},
	}
	clone := cfg.Clone()
	clone.InputPaths[0] = "b.json"
	clone.FollowUpPeriods[0] = 9
	clone.Methodologies[0] = schema.EventMethodology

	assert.Equal(t, "a.json", cfg.InputPaths[0])
	assert.Equal(t, 1, cfg.FollowUpPeriods[0])
	assert.Equal(t, schema.PersonMethodology, cfg.Methodologies[0])
}

func TestRevalidateCalculate(t *testing.T) {
	base := &Config{
		Inclusions:     schema.AllInclusions(),
		EvaluationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("empty keeps config", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateCalculate(cfg, "", "", ""))
		assert.Equal(t, base.Inclusions, cfg.Inclusions)
		assert.Equal(t, base.EvaluationDate, cfg.EvaluationDate)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateCalculate(cfg, "gender,race", "race", "2012-03-04"))
		assert.Equal(t, schema.Inclusions{Gender: true}, cfg.Inclusions)
		assert.Equal(t, time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC), cfg.EvaluationDate)
		assert.Equal(t, schema.AllInclusions(), base.Inclusions, "base config is untouched")
	})

	t.Run("errors", func(t *testing.T) {
		assert.Error(t, RevalidateCalculate(base.Clone(), "shoe_size", "", ""))
		assert.Error(t, RevalidateCalculate(base.Clone(), "", "", "March 4"))
	})
}
