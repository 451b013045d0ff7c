package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/r4m3nj33zu5/VulnFinder/internal/cvedb"
	"github.com/r4m3nj33zu5/VulnFinder/internal/fingerprint"
	"github.com/r4m3nj33zu5/VulnFinder/internal/scanner"
)

// testResults builds a result set with one identified open port, one
// unidentified open port, and one closed port.
func testResults() []scanner.HostResult {
	return []scanner.HostResult{
		{
			Target: "10.0.0.1",
			Ports: []scanner.PortResult{
				{
					Port: 22,
					Open: true,
					Fingerprint: &fingerprint.Fingerprint{
						Service:  "ssh",
						Product:  "OpenSSH",
						Version:  "8.4.1",
						Evidence: []string{"ssh banner: SSH-2.0-OpenSSH_8.4p1"},
					},
				},
				{
					Port: 8443,
					Open: true,
					Fingerprint: &fingerprint.Fingerprint{
						Service:  "tcp",
						Evidence: []string{},
					},
				},
				{Port: 80, Open: false},
			},
		},
	}
}

func testMatcher(t *testing.T) Matcher {
	t.Helper()
	return func(product, version string) []cvedb.Match {
		if product == "OpenSSH" && version == "8.4.1" {
			score := 7.0
			return []cvedb.Match{{
				CVEID:       "CVE-2021-41617",
				CVSS:        &score,
				Summary:     "Privilege escalation in certain configurations.",
				References:  []string{"https://example.org/advisory"},
				Remediation: "Upgrade to 8.8.",
			}}
		}
		return nil
	}
}

// TestBuild tests report assembly.
func TestBuild(t *testing.T) {
	t.Parallel()

	rep := Build(testResults(), testMatcher(t))

	if len(rep.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(rep.Hosts))
	}
	ports := rep.Hosts[0].Ports

	// The closed port must not be rendered.
	if len(ports) != 2 {
		t.Fatalf("expected 2 open ports in report, got %d", len(ports))
	}

	if ports[0].Port != 22 || ports[0].Product != "OpenSSH" {
		t.Errorf("unexpected first port %+v", ports[0])
	}
	if len(ports[0].CVEs) != 1 || ports[0].CVEs[0].CVEID != "CVE-2021-41617" {
		t.Errorf("expected CVE join, got %+v", ports[0].CVEs)
	}

	// Unidentified services carry an empty, non-nil match list.
	if ports[1].Port != 8443 || ports[1].CVEs == nil || len(ports[1].CVEs) != 0 {
		t.Errorf("unexpected second port %+v", ports[1])
	}

	if rep.TotalCVEs() != 1 {
		t.Errorf("expected 1 total CVE, got %d", rep.TotalCVEs())
	}
	if rep.OpenPortCount() != 2 {
		t.Errorf("expected 2 open ports, got %d", rep.OpenPortCount())
	}
}

// TestBuildProductWithoutVersion tests that the matcher is consulted
// even without a version, leaving the exclusion decision to it.
func TestBuildProductWithoutVersion(t *testing.T) {
	t.Parallel()

	var gotVersion *string
	results := []scanner.HostResult{{
		Target: "10.0.0.2",
		Ports: []scanner.PortResult{{
			Port: 80,
			Open: true,
			Fingerprint: &fingerprint.Fingerprint{
				Service:  "http",
				Product:  "cloudflare",
				Evidence: []string{"http server header: Server: cloudflare"},
			},
		}},
	}}

	rep := Build(results, func(_, version string) []cvedb.Match {
		gotVersion = &version
		return nil
	})

	if gotVersion == nil {
		t.Fatal("matcher was not consulted")
	}
	if *gotVersion != "" {
		t.Errorf("expected empty version, got %q", *gotVersion)
	}
	if rep.TotalCVEs() != 0 {
		t.Errorf("expected no CVEs, got %d", rep.TotalCVEs())
	}
}

// TestTableWriter tests plain-text rendering.
func TestTableWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders rows and CVE details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := Build(testResults(), testMatcher(t))
		if _, err := NewTableWriter(&buf).Write(rep); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"10.0.0.1", "OpenSSH", "8.4.1", "CVE-2021-41617", "Matched CVEs: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Evidence:") {
			t.Error("evidence rendered without WithEvidence")
		}
	})

	t.Run("includes evidence when requested", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := Build(testResults(), testMatcher(t))
		if _, err := NewTableWriter(&buf, WithEvidence()).Write(rep); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "ssh banner: SSH-2.0-OpenSSH_8.4p1") {
			t.Errorf("evidence missing:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests JSON rendering round-trips.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := Build(testResults(), testMatcher(t))
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Hosts) != 1 || decoded.Hosts[0].Target != "10.0.0.1" {
		t.Errorf("unexpected decoded report %+v", decoded)
	}
}

// TestMarkdownWriter tests Markdown rendering.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := Build(testResults(), testMatcher(t))
	if _, err := NewMarkdownWriter(&buf).Write(rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# VulnFinder Report", "## 10.0.0.1", "CVE-2021-41617"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestMultiWriter tests fan-out rendering.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	rep := Build(testResults(), testMatcher(t))
	mw := NewMultiWriter(NewTableWriter(&a), NewJSONWriter(&b))
	if _, err := mw.Write(rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
