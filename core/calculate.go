package core

import (
	"context"
	"errors"
	"sync"

	"github.com/huangsam/cohort/core/agg"
	"github.com/huangsam/cohort/schema"
)

// ErrNoPeople is returned when a calculation is asked to run over nobody.
var ErrNoPeople = errors.New("no people to calculate metrics for")

// workerResult is what one worker hands back after draining the people channel.
type workerResult struct {
	table  agg.Table
	people int
	pairs  int
}

// CalculateMetrics generates combinations for every person on a pool of workers, reduces them
// into per-worker tables, merges the tables pairwise and assembles the final records.
// Cancelling ctx abandons people that have not been processed yet.
func CalculateMetrics(ctx context.Context, people []schema.PersonHistory, opts Options, workers int) (*schema.CalculationOutput, error) {
	if len(people) == 0 {
		return nil, ErrNoPeople
	}
	workers = max(1, min(workers, len(people)))

	personCh := make(chan schema.PersonHistory, len(people))
	resultCh := make(chan workerResult, workers)
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			res := workerResult{table: agg.Table{}}
			for h := range personCh {
				if ctx.Err() != nil {
					continue
				}
				pairs := MapCombinations(h, opts)
				res.table.AddAll(pairs)
				res.people++
				res.pairs += len(pairs)
			}
			resultCh <- res
		})
	}

	for _, h := range people {
		personCh <- h
	}
	close(personCh)

	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tables := make([]agg.Table, 0, workers)
	var totals schema.RunTotals
	for r := range resultCh {
		tables = append(tables, r.table)
		totals.People += r.people
		totals.Pairs += r.pairs
	}

	records := AssembleTable(agg.MergeTree(tables))
	totals.Records = len(records)
	return &schema.CalculationOutput{Records: records, Totals: totals}, nil
}

// StreamCombinations generates combinations for every person on a pool of workers without
// reducing them. Pairs of one person stay together; the order across people is not defined.
func StreamCombinations(ctx context.Context, people []schema.PersonHistory, opts Options, workers int, emit func([]schema.MetricPair) error) error {
	if len(people) == 0 {
		return ErrNoPeople
	}
	workers = max(1, min(workers, len(people)))

	personCh := make(chan schema.PersonHistory, len(people))
	pairCh := make(chan []schema.MetricPair, workers)
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for h := range personCh {
				if ctx.Err() != nil {
					continue
				}
				pairCh <- MapCombinations(h, opts)
			}
		})
	}

	go func() {
		for _, h := range people {
			personCh <- h
		}
		close(personCh)
		wg.Wait()
		close(pairCh)
	}()

	var emitErr error
	for pairs := range pairCh {
		if emitErr != nil {
			continue
		}
		emitErr = emit(pairs)
	}
	if emitErr != nil {
		return emitErr
	}
	return ctx.Err()
}
