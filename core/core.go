// Package core has the recidivism metric engine: characteristic expansion, key spaces,
// event scoring, per-person combinations and the calculation pipeline.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/ingest"
	"github.com/huangsam/cohort/internal/outwriter"
	"github.com/huangsam/cohort/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteCalculate loads every input file, calculates all metrics and writes the records.
// It serves as the main entry point for the 'calculate' command.
func ExecuteCalculate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	output, err := GetCalculateResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteMetricRecords(output, cfg, time.Since(start))
}

// ExecuteCombinations streams the raw metric pairs of every person without reducing them.
func ExecuteCombinations(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	if shouldPrintHeader(ctx, cfg) {
		logCalculationHeader(cfg)
	}
	people, err := ingest.LoadFiles(ctx, cfg.InputPaths...)
	if err != nil {
		return err
	}

	sink, err := outwriter.NewPairSink(cfg)
	if err != nil {
		return err
	}
	streamErr := StreamCombinations(ctx, people, OptionsFromConfig(cfg), cfg.Workers, sink.Write)
	if err := sink.Close(); err != nil && streamErr == nil {
		return err
	}
	return streamErr
}

// ExecuteKeySpace prints the declared key space of one methodology and metric type.
// Nothing is read from disk.
func ExecuteKeySpace(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.WriteKeySpace(GetKeySpaceResults(cfg), cfg)
}

// ExecuteMetrics displays the definitions of every metric type and accumulator.
// This is a static display that does not read any person data.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.WriteMetricsDefinitions(cfg)
}

// GetCalculateResults loads the input files and runs a tracked calculation over them.
func GetCalculateResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.CalculationOutput, error) {
	if shouldPrintHeader(ctx, cfg) {
		logCalculationHeader(cfg)
	}
	people, err := ingest.LoadFiles(ctx, cfg.InputPaths...)
	if err != nil {
		return nil, err
	}
	return runTrackedCalculation(ctx, cfg, mgr, people)
}

// GetKeySpaceResults returns the unsliced key space for the configured methodology and metric type.
func GetKeySpaceResults(cfg *contract.Config) []schema.MetricKey {
	windows := DeclaredWindows(cfg.KeyspaceMetricType, cfg.FollowUpPeriods, cfg.MetricPeriodMonths)
	return KeySpace(schema.Characteristics{}, cfg.KeyspaceMethodology, cfg.KeyspaceMetricType, windows)
}

// ScoreEvent returns every pair a single anonymous release event contributes.
// With no person attached only event-level dimensions appear on the keys.
func ScoreEvent(cohortYear int, event schema.ReleaseEvent, opts Options) []schema.MetricPair {
	h := schema.PersonHistory{Cohorts: schema.CohortMap{cohortYear: {event}}}
	return MapCombinations(h, opts)
}

// OptionsFromConfig maps the validated configuration onto engine options.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		Inclusions:         cfg.Inclusions,
		Mode:               cfg.CombinationMode,
		Methodologies:      cfg.Methodologies,
		FollowUpPeriods:    cfg.FollowUpPeriods,
		MetricPeriodMonths: cfg.MetricPeriodMonths,
		EvaluationDate:     cfg.EvaluationDate,
		PersonLevel:        cfg.PersonLevel,
	}
}

// shouldPrintHeader reports whether header lines go to stdout.
// Machine-readable output on stdout is never prefixed with a header.
func shouldPrintHeader(ctx context.Context, cfg *contract.Config) bool {
	return !shouldSuppressHeader(ctx) && (cfg.Output == schema.TextOut || cfg.OutputFile != "")
}

// logCalculationHeader prints a concise, 2-line header for a calculation.
func logCalculationHeader(cfg *contract.Config) {
	methodologies := make([]string, len(cfg.Methodologies))
	for i, m := range cfg.Methodologies {
		methodologies[i] = string(m)
	}
	fmt.Printf("📂 Inputs: %s (Workers: %d)\n", strings.Join(cfg.InputPaths, ", "), cfg.Workers)
	fmt.Printf("📅 Evaluation: %s (Methodologies: %s, Mode: %s)\n",
		cfg.EvaluationDate.Format(schema.DateLayout), strings.Join(methodologies, ","), cfg.CombinationMode)
}
