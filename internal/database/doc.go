// Package database persists scan history in a local SQLite database.
//
// One row is stored per run: the target expressions, the run-wide
// counters, and the full report as JSON. History lets operators track
// how a network's exposure changes between authorized scans; it is
// strictly best-effort and a persistence failure never fails a scan.
package database
