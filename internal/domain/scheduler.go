package domain

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"arbor.dev/pkg/arbor/internal/controller"
	m "arbor.dev/pkg/arbor/internal/model"
	"golang.org/x/sync/errgroup"
)

// SequencedInfo is reported before the sequential group starts when both groups are present.
const SequencedInfo = "Starting sequenced tests..."

// Scheduler runs the parallel group through a bounded pool and the sequenced
// group in declaration order, returning results in declaration order.
type Scheduler struct {
	executor *Executor
	notifier *Notifier
	printer  controller.Printer
	workers  int
}

type indexedLeaf struct {
	index int
	leaf  m.WrappedFlatTest
}

type indexedResult struct {
	index  int
	result m.TestRunResult
}

// NewScheduler creates a Scheduler. workers <= 0 uses runtime.NumCPU().
func NewScheduler(executor *Executor, notifier *Notifier, printer controller.Printer, workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Scheduler{
		executor: executor,
		notifier: notifier,
		printer:  printer,
		workers:  workers,
	}
}

// Run executes leaves. With parallel unset every leaf takes the sequential path.
func (s *Scheduler) Run(ctx context.Context, leaves []m.WrappedFlatTest, parallel bool) []m.TestRunResult {
	concurrent, sequential := partition(leaves, parallel)

	slog.Info("Scheduling tests", "parallel", len(concurrent), "sequenced", len(sequential), "workers", s.workers)

	results := make([]indexedResult, 0, len(leaves))
	results = append(results, s.runParallel(ctx, concurrent)...)

	if len(concurrent) > 0 && len(sequential) > 0 {
		s.notifier.Notify(DispatchSync, func() { s.printer.Info(ctx, SequencedInfo) })
	}

	results = append(results, s.runSequential(ctx, sequential)...)

	sort.Slice(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})

	ordered := make([]m.TestRunResult, 0, len(results))
	for _, r := range results {
		ordered = append(ordered, r.result)
	}

	return ordered
}

func partition(leaves []m.WrappedFlatTest, parallel bool) ([]indexedLeaf, []indexedLeaf) {
	var concurrent, sequential []indexedLeaf

	for i, leaf := range leaves {
		tagged := indexedLeaf{index: i, leaf: leaf}
		if parallel && !leaf.Sequenced {
			concurrent = append(concurrent, tagged)
		} else {
			sequential = append(sequential, tagged)
		}
	}

	return concurrent, sequential
}

func (s *Scheduler) runParallel(ctx context.Context, leaves []indexedLeaf) []indexedResult {
	if len(leaves) == 0 {
		return nil
	}

	results := make([]indexedResult, 0, len(leaves))

	var resultsMutex sync.Mutex

	var group errgroup.Group
	group.SetLimit(s.workers)

	for _, leaf := range leaves {
		current := leaf

		group.Go(func() error {
			result := s.executor.Execute(ctx, current.leaf, DispatchAsync)

			resultsMutex.Lock()

			results = append(results, indexedResult{index: current.index, result: result})

			resultsMutex.Unlock()

			return nil
		})
	}

	// Workers never return errors; every leaf error is a result.
	_ = group.Wait()

	return results
}

func (s *Scheduler) runSequential(ctx context.Context, leaves []indexedLeaf) []indexedResult {
	results := make([]indexedResult, 0, len(leaves))

	for _, leaf := range leaves {
		result := s.executor.Execute(ctx, leaf.leaf, DispatchSync)
		results = append(results, indexedResult{index: leaf.index, result: result})
	}

	return results
}
