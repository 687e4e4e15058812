package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/schema"
)

// runTrackedCalculation calculates metrics for the people and records the run in the
// run store when one is configured. Tracking failures never fail the calculation.
func runTrackedCalculation(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, people []schema.PersonHistory) (*schema.CalculationOutput, error) {
	ctx = contextWithStoreManager(ctx, mgr)
	ctx = beginRun(ctx, cfg)

	output, err := CalculateMetrics(ctx, people, OptionsFromConfig(cfg), cfg.Workers)
	if err != nil {
		return nil, err
	}

	endRun(ctx, output)
	return output, nil
}

// runStoreFromContext returns the run store reachable from the context, or nil.
func runStoreFromContext(ctx context.Context) contract.RunStore {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// beginRun opens a tracked run and returns a context carrying its ID.
func beginRun(ctx context.Context, cfg *contract.Config) context.Context {
	store := runStoreFromContext(ctx)
	if store == nil {
		return ctx
	}

	runUUID := uuid.NewString()
	runID, err := store.BeginRun(time.Now(), runUUID, runConfigParams(cfg))
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID <= 0 {
		return ctx
	}
	return withRunID(ctx, runID)
}

// endRun stores the records and totals of the tracked run in the context, if any.
func endRun(ctx context.Context, output *schema.CalculationOutput) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	store := runStoreFromContext(ctx)
	if store == nil {
		return
	}

	if err := store.RecordMetrics(runID, output.Records); err != nil {
		logTrackingError("RecordMetrics", runID, err)
	}
	if err := store.EndRun(runID, time.Now(), output.Totals); err != nil {
		logTrackingError("EndRun", runID, err)
	}
}

// runConfigParams captures the settings that shape a run's output.
func runConfigParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"inputs":               cfg.InputPaths,
		"workers":              cfg.Workers,
		"evaluation_date":      cfg.EvaluationDate.Format(schema.DateLayout),
		"follow_up_periods":    cfg.FollowUpPeriods,
		"metric_period_months": cfg.MetricPeriodMonths,
		"inclusions":           cfg.Inclusions,
		"combination_mode":     string(cfg.CombinationMode),
		"methodologies":        cfg.Methodologies,
		"person_level":         cfg.PersonLevel,
	}
}

// logTrackingError logs run store errors to stderr without disrupting the calculation.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on run %d", operation, runID), err)
}
