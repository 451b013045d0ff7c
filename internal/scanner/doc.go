// Package scanner orchestrates a target×port scan matrix.
//
// The orchestrator turns the cartesian product of hosts and ports into
// independent jobs, runs them on a bounded worker pool (connectivity
// probe, then fingerprinting for open ports), aggregates run-wide
// statistics under a single lock, and optionally streams progress
// events to a consumer that can never stall the scan.
//
// Jobs race freely; determinism is restored only in the returned
// structure, which is grouped by host with ports ascending.
package scanner
