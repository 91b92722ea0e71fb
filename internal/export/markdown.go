package export

import (
	"fmt"
	"io"
	"time"

	"github.com/replicactl/replicactl/internal"
)

// MarkdownExporter exports in Markdown format
type MarkdownExporter struct{}

// ExportReport exports a training report to Markdown format
func (e *MarkdownExporter) ExportReport(report *internal.TrainingReport, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Training Report: %s\n\n", report.ReplicaUUID)

	if report.ReplicaName != "" {
		_, _ = fmt.Fprintf(w, "**Replica:** %s  \n", report.ReplicaName)
	}
	_, _ = fmt.Fprintf(w, "**Owner:** %s  \n", report.OwnerID)
	if !report.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", report.StartedAt.Format(time.RFC3339))
	}
	if !report.FinishedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Finished:** %s  \n", report.FinishedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Processed:** %d / %d (%d errors)\n\n", report.Processed, report.Total, report.Errors)

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Log\n\n")

	for _, line := range report.Log {
		_, _ = fmt.Fprintf(w, "- %s\n", line)
	}

	return nil
}

// ExportTranscript exports a chat transcript to Markdown format
func (e *MarkdownExporter) ExportTranscript(transcript *internal.Transcript, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat with %s\n\n", transcriptTitle(transcript))

	_, _ = fmt.Fprintf(w, "**Replica:** %s  \n", transcript.ReplicaUUID)
	_, _ = fmt.Fprintf(w, "**User:** %s  \n", transcript.UserID)
	if !transcript.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", transcript.StartedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, msg.Content)

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func transcriptTitle(transcript *internal.Transcript) string {
	if transcript.ReplicaName != "" {
		return transcript.ReplicaName
	}
	return transcript.ReplicaUUID
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
