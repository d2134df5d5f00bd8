package domain

import m "arbor.dev/pkg/arbor/internal/model"

// Summarize buckets results by outcome, preserving their order within each
// bucket, and sums their durations.
func Summarize(results []m.TestRunResult) m.TestResultSummary {
	var summary m.TestResultSummary

	for _, result := range results {
		switch result.Result.Kind {
		case m.Passed:
			summary.Passed = append(summary.Passed, result)
		case m.Ignored:
			summary.Ignored = append(summary.Ignored, result)
		case m.Failed:
			summary.Failed = append(summary.Failed, result)
		case m.Errored:
			summary.Errored = append(summary.Errored, result)
		}

		summary.Duration += result.Duration
	}

	return summary
}

// Status returns the summary's exit status: bit 0 for failures, bit 1 for errors.
func Status(summary m.TestResultSummary) int {
	return summary.Status()
}
