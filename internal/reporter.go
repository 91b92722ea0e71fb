package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// Reporter surfaces training progress to an operator. Implementations hold
// no history; the full ordered log lives in the TrainingRun.
type Reporter interface {
	// Progress reports a completion fraction in [0,1] and a label for the
	// row currently being processed.
	Progress(fraction float64, label string)
	// Log emits one per-row outcome line.
	Log(line string)
	// Done emits the final summary.
	Done(summary string)
}

// TerminalReporter renders progress on a terminal: a rewriting status line
// plus styled per-row log lines.
type TerminalReporter struct {
	out        io.Writer
	statusLine string
}

// NewTerminalReporter creates a reporter writing to out (normally stderr).
func NewTerminalReporter(out io.Writer) *TerminalReporter {
	return &TerminalReporter{out: out}
}

func (r *TerminalReporter) Progress(fraction float64, label string) {
	r.statusLine = fmt.Sprintf("[%3.0f%%] %s", fraction*100, label)
	fmt.Fprintf(r.out, "\r\033[K%s", progressStyle.Render(r.statusLine))
}

func (r *TerminalReporter) Log(line string) {
	// Clear the status line, print the log line, restore the status line.
	fmt.Fprintf(r.out, "\r\033[K%s\n", styleLogLine(line))
	if r.statusLine != "" {
		fmt.Fprintf(r.out, "%s", progressStyle.Render(r.statusLine))
	}
}

func (r *TerminalReporter) Done(summary string) {
	fmt.Fprintf(r.out, "\r\033[K%s\n", successStyle.Render(summary))
	r.statusLine = ""
}

func styleLogLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✓"):
		return successStyle.Render("✓") + line[len("✓"):]
	case strings.HasPrefix(line, "✗"):
		return errorStyle.Render("✗") + line[len("✗"):]
	case strings.HasPrefix(line, "⚠"):
		return warningStyle.Render("⚠") + line[len("⚠"):]
	default:
		return line
	}
}

// PlainReporter writes unstyled lines, for piped output and tests.
type PlainReporter struct {
	out io.Writer
}

// NewPlainReporter creates a reporter writing plain lines to out.
func NewPlainReporter(out io.Writer) *PlainReporter {
	return &PlainReporter{out: out}
}

func (r *PlainReporter) Progress(fraction float64, label string) {
	// Progress lines are terminal decoration; piped output keeps only the
	// per-row log and the summary.
}

func (r *PlainReporter) Log(line string) {
	fmt.Fprintln(r.out, line)
}

func (r *PlainReporter) Done(summary string) {
	fmt.Fprintln(r.out, summary)
}

// nopReporter discards everything.
type nopReporter struct{}

func (nopReporter) Progress(float64, string) {}
func (nopReporter) Log(string)               {}
func (nopReporter) Done(string)              {}
