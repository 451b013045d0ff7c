package scanner

import "sync"

// statsGuard owns the shared Stats instance behind a single mutex.
//
// Design decision: One mutex over the whole snapshot rather than
// per-field atomics, so a Stats value handed to a progress consumer is
// always internally consistent (no torn reads across counters).
type statsGuard struct {
	mu    sync.Mutex
	stats Stats
}

// reset installs the fixed pre-run totals and zeroes the counters.
func (g *statsGuard) reset(initial Stats) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats = initial
}

// record folds one completed job into the counters and returns the
// updated snapshot for event emission.
func (g *statsGuard) record(result PortResult) Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stats.Scanned++
	if result.Open {
		g.stats.OpenPorts++
	}
	if result.Fingerprint != nil {
		g.stats.ServicesIdentified++
	}
	return g.stats
}

// snapshot returns a copy of the current counters.
func (g *statsGuard) snapshot() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// addCVEMatches adds post-scan vulnerability matches to the counters.
func (g *statsGuard) addCVEMatches(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats.CVEsMatched += n
}
