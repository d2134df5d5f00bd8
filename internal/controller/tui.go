package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

const (
	defaultBarWidth = 40
	barPadding      = 4
	recentFailures  = 5
)

// TUIPrinter renders a live progress view with Bubble Tea.
// The program starts with the first test and stops on Summary or Stop.
type TUIPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	config  printerConfig
	palette palette
	total   int
	program *tea.Program
	done    chan struct{}
}

// NewTUIPrinter creates a TUIPrinter writing to out.
func NewTUIPrinter(out io.Writer, options ...PrinterOption) *TUIPrinter {
	return &TUIPrinter{
		out:     out,
		config:  applyOptions(options),
		palette: newPalette(out),
	}
}

func (t *TUIPrinter) BeforeRun(_ context.Context, tree m.Test) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = m.CaseCount(tree)
}

func (t *TUIPrinter) BeforeEach(_ context.Context, name string) {
	t.send(testStartedMsg{name: name})
}

func (t *TUIPrinter) Info(_ context.Context, text string) {
	t.println(t.palette.title.Render(text))
}

func (t *TUIPrinter) Passed(_ context.Context, name string, _ time.Duration) {
	t.send(testFinishedMsg{name: name, kind: m.Passed})
}

func (t *TUIPrinter) Ignored(_ context.Context, name string, reason string) {
	t.send(testFinishedMsg{name: name, kind: m.Ignored})

	if t.config.verbose {
		t.println(fmt.Sprintf("%s %s: %s", t.palette.label(m.Ignored), name, reason))
	}
}

func (t *TUIPrinter) Failed(_ context.Context, name string, message string, _ time.Duration) {
	t.send(testFinishedMsg{name: name, kind: m.Failed})
	t.println(fmt.Sprintf("%s %s\n%s", t.palette.label(m.Failed), name, indent(message)))
}

func (t *TUIPrinter) Exn(_ context.Context, name string, cause error, _ time.Duration) {
	t.send(testFinishedMsg{name: name, kind: m.Errored})
	t.println(fmt.Sprintf("%s %s\n%s", t.palette.label(m.Errored), name, indent(fmt.Sprintf("%+v", cause))))
}

// Summary stops the live view and prints the result table below it.
func (t *TUIPrinter) Summary(_ context.Context, summary m.TestResultSummary) {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprintf(t.out, "\n%s", renderSummary(summary, t.config.summaryLocation))
}

// Stop quits the live view if it is running and waits for it to exit.
func (t *TUIPrinter) Stop() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(runFinishedMsg{})
	<-done
}

func (t *TUIPrinter) send(msg tea.Msg) {
	t.start().Send(msg)
}

func (t *TUIPrinter) println(text string) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		t.mu.Lock()
		defer t.mu.Unlock()

		_, _ = fmt.Fprintln(t.out, text)

		return
	}

	program.Println(text)
}

func (t *TUIPrinter) start() *tea.Program {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return t.program
	}

	model := newRunModel(t.total, t.palette, terminalWidth(t.out))
	t.program = tea.NewProgram(model, tea.WithOutput(t.out), tea.WithInput(nil))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(t.program, t.done)

	return t.program
}

func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}

	return 0
}

type testStartedMsg struct {
	name string
}

type testFinishedMsg struct {
	name string
	kind m.ResultKind
}

type runFinishedMsg struct{}

// runModel is the Bubble Tea model behind TUIPrinter.
type runModel struct {
	total    int
	counts   [4]int
	running  map[string]struct{}
	failures []string
	bar      progress.Model
	palette  palette
	quitting bool
}

func newRunModel(total int, p palette, width int) runModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultBarWidth

	if width > barPadding {
		bar.Width = min(width-barPadding, defaultBarWidth*2)
	}

	return runModel{
		total:   total,
		running: make(map[string]struct{}),
		bar:     bar,
		palette: p,
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > barPadding {
			rm.bar.Width = min(msg.Width-barPadding, defaultBarWidth*2)
		}

		return rm, nil

	case testStartedMsg:
		rm.running = with(rm.running, msg.name)

		return rm, nil

	case testFinishedMsg:
		rm.running = without(rm.running, msg.name)
		rm.counts[msg.kind]++

		if msg.kind == m.Failed || msg.kind == m.Errored {
			rm.failures = append(rm.failures, msg.name)
			if len(rm.failures) > recentFailures {
				rm.failures = rm.failures[len(rm.failures)-recentFailures:]
			}
		}

		return rm, nil

	case runFinishedMsg:
		rm.quitting = true

		return rm, tea.Quit
	}

	return rm, nil
}

func (rm runModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s %d/%d\n", rm.bar.ViewAs(rm.percent()), rm.finished(), rm.total)
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d  %s %d\n",
		rm.palette.label(m.Passed), rm.counts[m.Passed],
		rm.palette.label(m.Ignored), rm.counts[m.Ignored],
		rm.palette.label(m.Failed), rm.counts[m.Failed],
		rm.palette.label(m.Errored), rm.counts[m.Errored])

	if len(rm.running) > 0 {
		fmt.Fprintf(&b, "%s %d test(s)\n", rm.palette.faint.Render("running"), len(rm.running))
	}

	for _, name := range rm.failures {
		fmt.Fprintf(&b, "  %s %s\n", rm.palette.fail.Render("x"), name)
	}

	return b.String()
}

func (rm runModel) finished() int {
	return rm.counts[m.Passed] + rm.counts[m.Ignored] + rm.counts[m.Failed] + rm.counts[m.Errored]
}

func (rm runModel) percent() float64 {
	if rm.total == 0 {
		return 1
	}

	return float64(rm.finished()) / float64(rm.total)
}

// with and without copy the set so earlier model values stay unchanged.
func with(set map[string]struct{}, name string) map[string]struct{} {
	out := make(map[string]struct{}, len(set)+1)
	for k := range set {
		out[k] = struct{}{}
	}

	out[name] = struct{}{}

	return out
}

func without(set map[string]struct{}, name string) map[string]struct{} {
	out := make(map[string]struct{}, len(set))
	for k := range set {
		if k != name {
			out[k] = struct{}{}
		}
	}

	return out
}
