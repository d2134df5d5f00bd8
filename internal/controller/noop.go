package controller

import (
	"context"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
)

// NoopPrinter ignores every hook. Used for headless evaluation.
type NoopPrinter struct{}

func (NoopPrinter) BeforeRun(context.Context, m.Test)                     {}
func (NoopPrinter) BeforeEach(context.Context, string)                    {}
func (NoopPrinter) Info(context.Context, string)                          {}
func (NoopPrinter) Passed(context.Context, string, time.Duration)         {}
func (NoopPrinter) Ignored(context.Context, string, string)               {}
func (NoopPrinter) Failed(context.Context, string, string, time.Duration) {}
func (NoopPrinter) Exn(context.Context, string, error, time.Duration)     {}
func (NoopPrinter) Summary(context.Context, m.TestResultSummary)          {}
