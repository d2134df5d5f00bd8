package model

import "time"

// Exit status bits derived from a summary.
const (
	StatusSuccess = 0
	StatusFailed  = 1 << 0
	StatusErrored = 1 << 1
)

// TestResultSummary buckets run results by outcome.
type TestResultSummary struct {
	Passed   []TestRunResult
	Ignored  []TestRunResult
	Failed   []TestRunResult
	Errored  []TestRunResult
	Duration time.Duration
}

// Combine concatenates the buckets of both summaries and adds their durations.
func (s TestResultSummary) Combine(other TestResultSummary) TestResultSummary {
	return TestResultSummary{
		Passed:   concat(s.Passed, other.Passed),
		Ignored:  concat(s.Ignored, other.Ignored),
		Failed:   concat(s.Failed, other.Failed),
		Errored:  concat(s.Errored, other.Errored),
		Duration: s.Duration + other.Duration,
	}
}

// Total returns the number of results across all buckets.
func (s TestResultSummary) Total() int {
	return len(s.Passed) + len(s.Ignored) + len(s.Failed) + len(s.Errored)
}

// Successful reports whether there are no failures and no errors.
func (s TestResultSummary) Successful() bool {
	return s.Status() == StatusSuccess
}

// Status returns the exit status bitmask: bit 0 for failures, bit 1 for errors.
func (s TestResultSummary) Status() int {
	status := StatusSuccess
	if len(s.Failed) > 0 {
		status |= StatusFailed
	}

	if len(s.Errored) > 0 {
		status |= StatusErrored
	}

	return status
}

func concat(a, b []TestRunResult) []TestRunResult {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	out := make([]TestRunResult, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}
