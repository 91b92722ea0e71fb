package export

import (
	"encoding/json"
	"io"

	"github.com/replicactl/replicactl/internal"
)

// JSONLExporter exports one JSON object per line: log lines for reports,
// messages for transcripts, each preceded by a header record.
type JSONLExporter struct{}

type jsonlHeader struct {
	Type        string `json:"type"`
	ReplicaUUID string `json:"replica_uuid"`
	ReplicaName string `json:"replica_name,omitempty"`
}

type jsonlLogLine struct {
	Type string `json:"type"`
	Line string `json:"line"`
}

type jsonlSummary struct {
	Type      string `json:"type"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
}

type jsonlMessage struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ExportReport exports a training report as JSONL
func (e *JSONLExporter) ExportReport(report *internal.TrainingReport, w io.Writer) error {
	enc := json.NewEncoder(w)

	header := jsonlHeader{Type: "report", ReplicaUUID: report.ReplicaUUID, ReplicaName: report.ReplicaName}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, line := range report.Log {
		if err := enc.Encode(jsonlLogLine{Type: "log", Line: line}); err != nil {
			return err
		}
	}

	summary := jsonlSummary{Type: "summary", Total: report.Total, Processed: report.Processed, Errors: report.Errors}
	return enc.Encode(summary)
}

// ExportTranscript exports a chat transcript as JSONL
func (e *JSONLExporter) ExportTranscript(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	header := jsonlHeader{Type: "transcript", ReplicaUUID: transcript.ReplicaUUID, ReplicaName: transcript.ReplicaName}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, msg := range transcript.Messages {
		if err := enc.Encode(jsonlMessage{Type: "message", Role: msg.Role, Content: msg.Content}); err != nil {
			return err
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
