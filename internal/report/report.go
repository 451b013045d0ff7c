package report

import (
	"time"

	"github.com/r4m3nj33zu5/VulnFinder/internal/cvedb"
	"github.com/r4m3nj33zu5/VulnFinder/internal/scanner"
)

// Matcher evaluates a product/version pair against the vulnerability
// database. It is a plain function so report assembly does not depend
// on how the database is stored.
type Matcher func(product, version string) []cvedb.Match

// Report is the final presentation structure of one run.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Hosts       []HostReport `json:"hosts"`
}

// HostReport groups the reportable ports of one host.
type HostReport struct {
	Target string       `json:"target"`
	Ports  []PortReport `json:"ports"`
}

// PortReport is one open port joined with its vulnerability matches.
// Closed ports never appear in a report.
type PortReport struct {
	Port     int           `json:"port"`
	Service  string        `json:"service,omitempty"`
	Product  string        `json:"product,omitempty"`
	Version  string        `json:"version,omitempty"`
	Evidence []string      `json:"evidence"`
	CVEs     []cvedb.Match `json:"cves"`
}

// Build joins scan results with vulnerability matches. The matcher is
// consulted once per open port that has an identified product;
// unidentified services are reported with empty match lists.
func Build(results []scanner.HostResult, match Matcher) *Report {
	report := &Report{GeneratedAt: time.Now()}

	for _, host := range results {
		hr := HostReport{Target: host.Target}
		for _, pr := range host.Ports {
			if !pr.Open {
				continue
			}

			port := PortReport{
				Port:     pr.Port,
				Evidence: []string{},
				CVEs:     []cvedb.Match{},
			}
			if fp := pr.Fingerprint; fp != nil {
				port.Service = fp.Service
				port.Product = fp.Product
				port.Version = fp.Version
				port.Evidence = append(port.Evidence, fp.Evidence...)
				if fp.Product != "" {
					port.CVEs = match(fp.Product, fp.Version)
					if port.CVEs == nil {
						port.CVEs = []cvedb.Match{}
					}
				}
			}
			hr.Ports = append(hr.Ports, port)
		}
		report.Hosts = append(report.Hosts, hr)
	}

	return report
}

// TotalCVEs counts every match in the report. The scan statistics pick
// this up after assembly.
func (r *Report) TotalCVEs() int {
	var total int
	for _, host := range r.Hosts {
		for _, port := range host.Ports {
			total += len(port.CVEs)
		}
	}
	return total
}

// OpenPortCount counts the reportable ports across all hosts.
func (r *Report) OpenPortCount() int {
	var total int
	for _, host := range r.Hosts {
		total += len(host.Ports)
	}
	return total
}
