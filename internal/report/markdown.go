package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders reports as GitHub Flavored Markdown for
// documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the full report in Markdown.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	for _, host := range report.Hosts {
		w.writeHost(md, host)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("VulnFinder Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Hosts", strconv.Itoa(len(report.Hosts))},
			{"Open Ports", strconv.Itoa(report.OpenPortCount())},
			{"Matched CVEs", strconv.Itoa(report.TotalCVEs())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *Report) {
	switch {
	case report.TotalCVEs() > 0:
		md.Warningf("%d known vulnerabilities matched identified services. Review the per-host sections below.",
			report.TotalCVEs())
	case report.OpenPortCount() > 0:
		md.Note("Open services were found but none matched a known vulnerability in the loaded database.")
	default:
		md.Tip("No open ports were found on the scanned targets.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeHost(md *markdown.Markdown, host HostReport) {
	md.H2(host.Target)
	md.PlainText("")

	if len(host.Ports) == 0 {
		md.PlainText("No open ports.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(host.Ports))
	for _, p := range host.Ports {
		rows = append(rows, []string{
			strconv.Itoa(p.Port),
			orDash(p.Service),
			orDash(p.Product),
			orDash(p.Version),
			strconv.Itoa(len(p.CVEs)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Port", "Service", "Product", "Version", "CVEs"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range host.Ports {
		for _, cve := range p.CVEs {
			detail := cve.Summary
			if cve.Remediation != "" {
				detail += "\n\nRemediation: " + cve.Remediation
			}
			if len(cve.References) > 0 {
				detail += "\n\nReferences: " + strings.Join(cve.References, ", ")
			}
			md.Details(cve.CVEID+" (port "+strconv.Itoa(p.Port)+")", detail)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by VulnFinder*")
}
