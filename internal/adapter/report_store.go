package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"arbor.dev/pkg/arbor/pkg"
	"gopkg.in/yaml.v3"
)

// ReportStore persists run results.
type ReportStore interface {
	// SaveSummary writes a YAML report of summary to path.
	SaveSummary(path string, summary m.TestResultSummary) error
	// SaveJournal writes results to a gob journal at path.
	SaveJournal(path string, results []m.TestRunResult) error
	// LoadJournal reads back the results stored by SaveJournal.
	LoadJournal(path string) ([]m.TestRunResult, error)
}

// NewReportStore returns a file-backed ReportStore.
func NewReportStore() ReportStore {
	return reportStore{}
}

type reportStore struct{}

type summaryReport struct {
	Status   string         `yaml:"status"`
	Duration string         `yaml:"duration"`
	Counts   reportCounts   `yaml:"counts"`
	Results  []resultRecord `yaml:"results,omitempty"`
}

type reportCounts struct {
	Passed  int `yaml:"passed"`
	Ignored int `yaml:"ignored"`
	Failed  int `yaml:"failed"`
	Errored int `yaml:"errored"`
	Total   int `yaml:"total"`
}

// resultRecord is the serialized form of a TestRunResult. Causes are kept as text.
type resultRecord struct {
	Name     string        `yaml:"name"`
	Kind     m.ResultKind  `yaml:"-"`
	Result   string        `yaml:"result"`
	Message  string        `yaml:"message,omitempty"`
	Cause    string        `yaml:"cause,omitempty"`
	Path     string        `yaml:"path,omitempty"`
	Line     int           `yaml:"line,omitempty"`
	Duration time.Duration `yaml:"-"`
	Elapsed  string        `yaml:"duration"`
}

func newRecord(result m.TestRunResult) resultRecord {
	record := resultRecord{
		Name:     result.Name,
		Kind:     result.Result.Kind,
		Result:   result.Result.Kind.String(),
		Message:  result.Result.Message,
		Path:     result.Location.Path,
		Line:     result.Location.Line,
		Duration: result.Duration,
		Elapsed:  result.Duration.String(),
	}

	if result.Result.Cause != nil {
		record.Cause = result.Result.Cause.Error()
	}

	return record
}

func (r resultRecord) runResult() m.TestRunResult {
	result := m.TestResult{Kind: r.Kind, Message: r.Message}
	if r.Kind == m.Errored {
		result.Cause = errors.New(r.Cause)
	}

	return m.TestRunResult{
		Name:     r.Name,
		Location: m.SourceLocation{Path: r.Path, Line: r.Line},
		Result:   result,
		Duration: r.Duration,
	}
}

func (reportStore) SaveSummary(path string, summary m.TestResultSummary) error {
	status := "success"
	if !summary.Successful() {
		status = "failed"
	}

	report := summaryReport{
		Status:   status,
		Duration: summary.Duration.String(),
		Counts: reportCounts{
			Passed:  len(summary.Passed),
			Ignored: len(summary.Ignored),
			Failed:  len(summary.Failed),
			Errored: len(summary.Errored),
			Total:   summary.Total(),
		},
	}

	for _, bucket := range [][]m.TestRunResult{summary.Failed, summary.Errored, summary.Ignored, summary.Passed} {
		for _, result := range bucket {
			report.Results = append(report.Results, newRecord(result))
		}
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	slog.Debug("Saved summary report", "path", path, "results", len(report.Results))

	return nil
}

func (reportStore) SaveJournal(path string, results []m.TestRunResult) (err error) {
	journal, err := pkg.CreateJournal[resultRecord](path)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := journal.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	records := make([]resultRecord, 0, len(results))
	for _, result := range results {
		records = append(records, newRecord(result))
	}

	return journal.AppendBatch(records)
}

func (reportStore) LoadJournal(path string) ([]m.TestRunResult, error) {
	journal, err := pkg.OpenJournal[resultRecord](path)
	if err != nil {
		return nil, err
	}

	defer journal.Close()

	results := make([]m.TestRunResult, 0, journal.Len())

	err = journal.Range(func(_ uint64, record resultRecord) error {
		results = append(results, record.runResult())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
