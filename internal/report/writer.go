package report

import "io"

// Writer renders a report to some destination.
//
// Design decision: We use an interface rather than free functions so
// output format selection happens once at CLI level, and so writing to
// terminal and file simultaneously is just a MultiWriter.
type Writer interface {
	// Write renders the report. Returns the number of bytes written
	// and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter renders a report through several Writers in order.
// Not io.MultiWriter because our unit of writing is a report, not a
// byte slice.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all given Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through every writer, stopping on the
// first error. Returns the total bytes written.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
