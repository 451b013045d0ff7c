package report

import (
	"encoding/json"
	"io"
)

// JSONWriter renders reports as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables indented JSON output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as a single JSON document.
func (w *JSONWriter) Write(report *Report) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
