package cvedb

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is a single record of the vulnerability database snapshot.
// The JSON field names match the published snapshot format, so a
// database file is interchangeable between tool versions.
type Entry struct {
	// Product is the affected product name (e.g. "OpenSSH", "nginx").
	// Comparison against identified services is case-insensitive.
	Product string `json:"product"`

	// VersionRange is a comma-separated set of operator+version
	// conditions that must all hold (e.g. ">=8.0.0,<9.0.0"), or the
	// literal "any". See version.go for the evaluation rules.
	VersionRange string `json:"version_range"`

	// CVEID is the CVE identifier (e.g. "CVE-2023-38408").
	CVEID string `json:"cve_id"`

	// CVSS is the CVSS base score, if known.
	CVSS *float64 `json:"cvss"`

	// Summary is a one-paragraph description of the weakness.
	Summary string `json:"summary"`

	// References lists advisory and write-up URLs.
	References []string `json:"references"`

	// Remediation is the recommended fix or mitigation.
	Remediation string `json:"remediation"`
}

// Match is a confirmed hit: the fields of a matching Entry relevant
// for reporting, detached from the database so reports stay valid
// regardless of the database's lifetime.
type Match struct {
	CVEID       string   `json:"cve_id"`
	CVSS        *float64 `json:"cvss"`
	Summary     string   `json:"summary"`
	References  []string `json:"references"`
	Remediation string   `json:"remediation"`
}

// DB is an in-memory vulnerability database.
// It is safe for concurrent use after Load because it is never mutated.
type DB struct {
	entries []Entry
}

// Load reads a JSON database snapshot from path.
//
// A load failure must abort the run: scanning without a database would
// silently report "no known vulnerabilities".
func Load(path string) (*DB, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided database path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read CVE database %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON database snapshot from raw bytes.
func Parse(data []byte) (*DB, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse CVE database: %w", err)
	}
	return &DB{entries: entries}, nil
}

// Len returns the number of entries in the database.
func (db *DB) Len() int {
	return len(db.entries)
}

// Match returns every entry that applies to the given product and
// observed version.
//
// An entry is a candidate when its product equals the query product
// case-insensitively. A candidate is confirmed only when a version was
// observed and it satisfies the entry's version range; a service whose
// version could not be determined never matches, even if the product
// does. This errs on the side of under-reporting: a CVE claim without
// version evidence is noise, not signal.
func (db *DB) Match(product, version string) []Match {
	var matches []Match
	for _, e := range db.entries {
		if !strings.EqualFold(e.Product, product) {
			continue
		}
		if version == "" || !versionInRange(version, e.VersionRange) {
			continue
		}
		matches = append(matches, Match{
			CVEID:       e.CVEID,
			CVSS:        e.CVSS,
			Summary:     e.Summary,
			References:  e.References,
			Remediation: e.Remediation,
		})
	}
	return matches
}
