// Package report assembles scan results and vulnerability matches into
// a presentation-ready structure and renders it.
//
// Assembly joins the orchestrator's per-host results with the matching
// engine, which it calls as a plain function; this package contains no
// concurrency or protocol logic. Rendering is behind a Writer
// interface with table, JSON, and Markdown implementations.
package report
