package export

import (
	"io"

	"github.com/replicactl/replicactl/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports in YAML format
type YAMLExporter struct{}

// ExportReport exports a training report to YAML format
func (e *YAMLExporter) ExportReport(report *internal.TrainingReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(report)
}

// ExportTranscript exports a chat transcript to YAML format
func (e *YAMLExporter) ExportTranscript(transcript *internal.Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(transcript)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
