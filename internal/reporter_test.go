package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlainReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewPlainReporter(&buf)

	reporter.Progress(0.5, "message 1/2: hi")
	reporter.Log("✓ trained message 1 (kb entry 101)")
	reporter.Log("✗ failed to create knowledge-base entry for message 2 (ts 2.0): boom")
	reporter.Done("processed: 1, errors: 1, total: 2")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("plain output has %d lines, want 3 (progress is terminal-only): %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "✓") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "✗") {
		t.Errorf("lines[1] = %q", lines[1])
	}
	if lines[2] != "processed: 1, errors: 1, total: 2" {
		t.Errorf("lines[2] = %q", lines[2])
	}
}

func TestTerminalReporterDone(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	reporter.Progress(1.0, "message 2/2: bye")
	reporter.Done("processed: 2, errors: 0, total: 2")

	if !strings.Contains(buf.String(), "processed: 2, errors: 0, total: 2") {
		t.Errorf("terminal output missing summary: %q", buf.String())
	}
}

func TestTerminalReporterLogKeepsStatusLine(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	reporter.Progress(0.5, "message 1/2: hi")
	buf.Reset()
	reporter.Log("✓ trained message 1 (kb entry 101)")

	out := buf.String()
	if !strings.Contains(out, "trained message 1") {
		t.Errorf("log line missing from output: %q", out)
	}
	// The status line is redrawn after the log line.
	if !strings.Contains(out, "message 1/2: hi") {
		t.Errorf("status line not restored: %q", out)
	}
}

func TestStyleLogLinePassthrough(t *testing.T) {
	line := "plain line with no marker"
	if got := styleLogLine(line); got != line {
		t.Errorf("styleLogLine() = %q, want unchanged", got)
	}
}
