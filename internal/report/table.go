package report

import (
	"fmt"
	"io"
	"strings"
)

// TableWriter renders reports as aligned plain text for terminals.
type TableWriter struct {
	baseWriter

	// showEvidence includes raw evidence lines under each port.
	showEvidence bool
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithEvidence includes raw evidence strings in the output.
func WithEvidence() TableWriterOption {
	return func(w *TableWriter) {
		w.showEvidence = true
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as a text table, one row per open port,
// with CVE details indented under their row.
func (w *TableWriter) Write(report *Report) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%-17s %-6s %-8s %-15s %-10s %s\n",
		"TARGET", "PORT", "SERVICE", "PRODUCT", "VERSION", "CVES")
	b.WriteString(strings.Repeat("-", 68) + "\n")

	for _, host := range report.Hosts {
		for _, p := range host.Ports {
			fmt.Fprintf(&b, "%-17s %-6d %-8s %-15s %-10s %d\n",
				host.Target, p.Port,
				orDash(p.Service), orDash(p.Product), orDash(p.Version),
				len(p.CVEs))

			for _, cve := range p.CVEs {
				fmt.Fprintf(&b, "  - %s%s %s\n", cve.CVEID, cvssSuffix(cve.CVSS), cve.Summary)
				if cve.Remediation != "" {
					fmt.Fprintf(&b, "    Remediation: %s\n", cve.Remediation)
				}
				if len(cve.References) > 0 {
					fmt.Fprintf(&b, "    References: %s\n", strings.Join(cve.References, ", "))
				}
			}

			if w.showEvidence && len(p.Evidence) > 0 {
				fmt.Fprintf(&b, "    Evidence: %s\n", strings.Join(p.Evidence, " | "))
			}
		}
	}

	if report.OpenPortCount() == 0 {
		b.WriteString("(no open ports)\n")
	}
	fmt.Fprintf(&b, "\nMatched CVEs: %d\n", report.TotalCVEs())

	return io.WriteString(w.output, b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cvssSuffix(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf(" CVSS:%.1f", *score)
}
