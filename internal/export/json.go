package export

import (
	"encoding/json"
	"io"

	"github.com/replicactl/replicactl/internal"
)

// JSONExporter exports in JSON format (pretty-printed)
type JSONExporter struct{}

// ExportReport exports a training report to JSON format
func (e *JSONExporter) ExportReport(report *internal.TrainingReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// ExportTranscript exports a chat transcript to JSON format
func (e *JSONExporter) ExportTranscript(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcript)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
