package domain

import (
	"context"
	"sync"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
)

type event struct {
	hook   string
	name   string
	detail string
}

// recordingPrinter records hook calls in delivery order.
type recordingPrinter struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPrinter) record(hook, name, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event{hook: hook, name: name, detail: detail})
}

func (p *recordingPrinter) BeforeRun(context.Context, m.Test) { p.record("beforeRun", "", "") }
func (p *recordingPrinter) BeforeEach(_ context.Context, name string) {
	p.record("beforeEach", name, "")
}
func (p *recordingPrinter) Info(_ context.Context, text string) { p.record("info", "", text) }
func (p *recordingPrinter) Passed(_ context.Context, name string, _ time.Duration) {
	p.record("passed", name, "")
}
func (p *recordingPrinter) Ignored(_ context.Context, name string, reason string) {
	p.record("ignored", name, reason)
}
func (p *recordingPrinter) Failed(_ context.Context, name string, message string, _ time.Duration) {
	p.record("failed", name, message)
}
func (p *recordingPrinter) Exn(_ context.Context, name string, cause error, _ time.Duration) {
	p.record("exn", name, cause.Error())
}
func (p *recordingPrinter) Summary(context.Context, m.TestResultSummary) { p.record("summary", "", "") }

func (p *recordingPrinter) snapshot() []event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]event(nil), p.events...)
}

func (p *recordingPrinter) hooks(hook string) []event {
	var out []event

	for _, e := range p.snapshot() {
		if e.hook == hook {
			out = append(out, e)
		}
	}

	return out
}

func passing(context.Context) error { return nil }

func testCase(state m.FocusState) m.TestCase {
	return m.TestCase{Code: passing, State: state}
}

func labelled(name string, test m.Test) m.TestLabel {
	return m.TestLabel{Name: name, Test: test}
}

func list(tests ...m.Test) m.TestList {
	return m.TestList{Tests: tests}
}

func names(flat []m.FlatTest) []string {
	out := make([]string, 0, len(flat))
	for _, f := range flat {
		out = append(out, f.Name)
	}

	return out
}

func resultNames(results []m.TestRunResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}

	return out
}
