package controller

import (
	"bytes"
	"fmt"
	"io"
	"time"

	m "arbor.dev/pkg/arbor/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

// palette holds the status styles for one output.
type palette struct {
	pass  lipgloss.Style
	skip  lipgloss.Style
	fail  lipgloss.Style
	err   lipgloss.Style
	faint lipgloss.Style
	title lipgloss.Style
}

func newPalette(out io.Writer) palette {
	renderer := lipgloss.NewRenderer(out)

	return palette{
		pass:  renderer.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		skip:  renderer.NewStyle().Foreground(lipgloss.Color("3")),
		fail:  renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		err:   renderer.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		faint: renderer.NewStyle().Faint(true),
		title: renderer.NewStyle().Bold(true),
	}
}

func (p palette) label(kind m.ResultKind) string {
	switch kind {
	case m.Passed:
		return p.pass.Render("PASS")
	case m.Ignored:
		return p.skip.Render("SKIP")
	case m.Failed:
		return p.fail.Render("FAIL")
	case m.Errored:
		return p.err.Render("ERROR")
	default:
		return "????"
	}
}

// renderSummary renders the count table and, when withLocations is set, a
// per-test table of failures, errors and ignored tests.
func renderSummary(summary m.TestResultSummary, withLocations bool) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Result", "Tests"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{m.Passed.String(), fmt.Sprintf("%d", len(summary.Passed))})
	table.Append([]string{m.Ignored.String(), fmt.Sprintf("%d", len(summary.Ignored))})
	table.Append([]string{m.Failed.String(), fmt.Sprintf("%d", len(summary.Failed))})
	table.Append([]string{m.Errored.String(), fmt.Sprintf("%d", len(summary.Errored))})
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", summary.Total())})
	table.Render()

	if withLocations {
		buffer.WriteString("\n")
		renderLocations(&buffer, summary)
	}

	fmt.Fprintf(&buffer, "%d tests run in %s: %d passed, %d ignored, %d failed, %d errored. %s\n",
		summary.Total(), summary.Duration.Round(time.Millisecond),
		len(summary.Passed), len(summary.Ignored), len(summary.Failed), len(summary.Errored),
		verdict(summary))

	return buffer.String()
}

func renderLocations(w io.Writer, summary m.TestResultSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Result", "Location", "Duration"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	buckets := [][]m.TestRunResult{summary.Failed, summary.Errored, summary.Ignored, summary.Passed}
	for _, bucket := range buckets {
		for _, result := range bucket {
			table.Append([]string{
				result.Name,
				result.Result.Kind.String(),
				result.Location.String(),
				result.Duration.Round(time.Microsecond).String(),
			})
		}
	}

	table.Render()
}

func verdict(summary m.TestResultSummary) string {
	if summary.Successful() {
		return "Success!"
	}

	return "Failed!"
}
