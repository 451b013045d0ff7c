package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each individual network operation. 800ms
	// is generous for LAN and most WAN paths while keeping large
	// matrices fast; slower links need --timeout raised.
	DefaultTimeout = 800 * time.Millisecond

	// DefaultConcurrency is the in-flight job ceiling. 200 sockets is
	// well under common file-descriptor limits while saturating most
	// uplinks.
	DefaultConcurrency = 200

	// DefaultCVEDatabase is the path of the vulnerability snapshot
	// relative to the working directory.
	DefaultCVEDatabase = "data/cve_db.json"

	// AppName is used for XDG directory paths.
	AppName = "vulnfinder"
)

// DefaultPorts is scanned when no port list is given: the services
// this tool can actually fingerprint plus the usual suspects worth a
// liveness check.
var DefaultPorts = []int{22, 53, 80, 443, 445, 3389}

// Config holds all options for one run.
type Config struct {
	// Targets are the raw target expressions from the command line,
	// expanded by the target package before scanning.
	Targets []string

	// Timeout is the per-operation network deadline.
	Timeout time.Duration

	// Concurrency is the maximum number of in-flight scan jobs.
	Concurrency int

	// PortsSpec is a comma-separated port list ("22,80,8080").
	// Empty means use PortsFile or DefaultPorts.
	PortsSpec string

	// PortsFile is a path to a file with one port per line.
	PortsFile string

	// CVEDatabase is the path to the vulnerability snapshot. Loading
	// it is fatal on failure; scanning never starts without it.
	CVEDatabase string

	// JSONReport selects JSON output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ShowEvidence includes raw evidence strings in rendered reports.
	ShowEvidence bool

	// SOCKS5Proxy routes all probe traffic through a SOCKS5 proxy at
	// the given host:port. Empty means direct connections.
	SOCKS5Proxy string

	// SaveToDB persists the run to the scan history database.
	SaveToDB bool

	// DBDir is the directory holding the history database. Defaults
	// to the XDG data directory.
	DBDir string

	// Authorized records the operator's explicit confirmation that
	// they own or are authorized to scan the targets. Scanning
	// refuses to start without it.
	Authorized bool

	// Verbose enables debug-level logging.
	Verbose bool
}

// New creates a Config with defaults. Zero values would be unusable
// (a zero timeout fails every probe), so defaults are explicit.
func New() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		CVEDatabase: DefaultCVEDatabase,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for VulnFinder
// (~/.local/share/vulnfinder on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for VulnFinder
// (~/.config/vulnfinder on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration, returning the first problem
// found. Called once after flag parsing, before any scanning.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.Authorized {
		return ErrNotAuthorized
	}
	return nil
}
