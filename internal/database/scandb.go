package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/r4m3nj33zu5/VulnFinder/internal/report"
	"github.com/r4m3nj33zu5/VulnFinder/internal/scanner"
)

// ErrNotFound is returned when a requested scan record does not exist.
var ErrNotFound = errors.New("scan record not found")

// ScanDB provides SQLite-based storage for scan history.
type ScanDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in the given directory.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "vulnfinder.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a larger pool only adds lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

func (sdb *ScanDB) createTables() error {
	schema := `
	-- One row per scan run; the full report is kept as JSON so the
	-- schema does not chase the report structure.
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		targets TEXT NOT NULL,
		total_ports INTEGER NOT NULL,
		open_ports INTEGER NOT NULL,
		services_identified INTEGER NOT NULL,
		cves_matched INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Record is one stored scan run's metadata, without the report body.
type Record struct {
	ID                 int64
	Timestamp          time.Time
	Targets            []string
	TotalPorts         int
	OpenPorts          int
	ServicesIdentified int
	CVEsMatched        int
}

// Save stores one completed run.
func (sdb *ScanDB) Save(ctx context.Context, targets []string, stats scanner.Stats, rep *report.Report) (int64, error) {
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	result, err := sdb.db.ExecContext(ctx, `
	INSERT INTO scans (targets, total_ports, open_ports, services_identified, cves_matched, report_json)
	VALUES (?, ?, ?, ?, ?, ?)`,
		strings.Join(targets, " "),
		stats.TotalPorts,
		stats.OpenPorts,
		stats.ServicesIdentified,
		stats.CVEsMatched,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan record: %w", err)
	}
	return result.LastInsertId()
}

// List returns the most recent scan records, newest first.
func (sdb *ScanDB) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT id, timestamp, targets, total_ports, open_ports, services_identified, cves_matched
	FROM scans
	ORDER BY timestamp DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var timestamp, targets string
		if err := rows.Scan(&rec.ID, &timestamp, &targets,
			&rec.TotalPorts, &rec.OpenPorts, &rec.ServicesIdentified, &rec.CVEsMatched); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Timestamp = parseTimestamp(timestamp)
		rec.Targets = strings.Fields(targets)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetReport retrieves a stored report by scan id.
func (sdb *ScanDB) GetReport(ctx context.Context, id int64) (*report.Report, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM scans WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(reportJSON), &rep); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}
	return &rep, nil
}

// parseTimestamp handles the formats SQLite may return depending on
// how the value was written.
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
