// Package mocks provides testify mocks for controller interfaces.
package mocks

import (
	"context"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockPrinter is a mock implementation of controller.Printer.
type MockPrinter struct {
	mock.Mock
}

// NewMockPrinter creates a MockPrinter whose expectations are asserted on test cleanup.
func NewMockPrinter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPrinter {
	printer := &MockPrinter{}
	printer.Mock.Test(t)

	t.Cleanup(func() { printer.AssertExpectations(t) })

	return printer
}

func (p *MockPrinter) BeforeRun(ctx context.Context, tree m.Test) {
	p.Called(ctx, tree)
}

func (p *MockPrinter) BeforeEach(ctx context.Context, name string) {
	p.Called(ctx, name)
}

func (p *MockPrinter) Info(ctx context.Context, text string) {
	p.Called(ctx, text)
}

func (p *MockPrinter) Passed(ctx context.Context, name string, duration time.Duration) {
	p.Called(ctx, name, duration)
}

func (p *MockPrinter) Ignored(ctx context.Context, name string, reason string) {
	p.Called(ctx, name, reason)
}

func (p *MockPrinter) Failed(ctx context.Context, name string, message string, duration time.Duration) {
	p.Called(ctx, name, message, duration)
}

func (p *MockPrinter) Exn(ctx context.Context, name string, cause error, duration time.Duration) {
	p.Called(ctx, name, cause, duration)
}

func (p *MockPrinter) Summary(ctx context.Context, summary m.TestResultSummary) {
	p.Called(ctx, summary)
}
