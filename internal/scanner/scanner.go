package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	"github.com/r4m3nj33zu5/VulnFinder/internal/fingerprint"
)

// Config holds the run parameters of one scan. It is immutable once
// the scan starts.
type Config struct {
	// Timeout bounds every individual network operation (connect,
	// banner read, HTTP exchange, TLS handshake). There is no global
	// run deadline; one slow endpoint never affects another.
	Timeout time.Duration

	// Concurrency is the hard ceiling on in-flight jobs. It bounds
	// simultaneous open sockets on large target×port matrices.
	Concurrency int
}

// PortResult is the outcome of one (host, port) job. A fingerprint is
// present only when the port was open; fingerprinting is never
// attempted against a closed port.
type PortResult struct {
	Port        int                      `json:"port"`
	Open        bool                     `json:"open"`
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint,omitempty"`
}

// HostResult aggregates every port outcome for one host, sorted by
// port ascending.
type HostResult struct {
	Target string       `json:"target"`
	Ports  []PortResult `json:"ports"`
}

// Stats are the run-wide counters. One instance is shared by all jobs
// and mutated under the scanner's lock; consumers only ever see
// snapshot copies, so an emitted Stats value is internally consistent.
type Stats struct {
	TotalTargets       int `json:"total_targets"`
	TotalPorts         int `json:"total_ports"`
	Scanned            int `json:"scanned"`
	OpenPorts          int `json:"open_ports"`
	ServicesIdentified int `json:"services_identified"`

	// CVEsMatched is filled in by report assembly after the scan via
	// RecordCVEMatches; matching happens downstream of scanning.
	CVEsMatched int `json:"cves_matched"`
}

// Event is one progress notification, pushed as each job completes.
// Stats is a snapshot taken at emission time.
type Event struct {
	Message string
	Target  string
	Port    int
	Stats   Stats
}

// Fingerprinter abstracts the fingerprinting engine so tests can
// observe or replace it.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, host string, port int, timeout time.Duration) *fingerprint.Fingerprint
}

// job is one (host, port) unit of work.
type job struct {
	target string
	port   int
}

// Scanner runs bounded concurrent scans. Create one with New; a
// Scanner is good for a single Scan call because its statistics are
// per-run.
type Scanner struct {
	cfg     Config
	dialer  proxy.Dialer
	engine  Fingerprinter
	logger  *slog.Logger
	events  chan<- Event
	statsMu statsGuard
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDialer sets the dialer used for connectivity probes. The same
// dialer should be given to the fingerprinting engine so probes and
// fingerprints traverse the same path (e.g. a SOCKS5 proxy).
func WithDialer(d proxy.Dialer) Option {
	return func(s *Scanner) {
		s.dialer = d
	}
}

// WithFingerprinter replaces the fingerprinting engine.
func WithFingerprinter(f Fingerprinter) Option {
	return func(s *Scanner) {
		s.engine = f
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithEvents attaches a progress event sink. Emission never blocks: if
// the channel is full the event is dropped rather than stalling a job.
// With no sink attached, events are simply not produced.
func WithEvents(ch chan<- Event) Option {
	return func(s *Scanner) {
		s.events = ch
	}
}

// New creates a Scanner.
func New(cfg Config, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:    cfg,
		dialer: &net.Dialer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = fingerprint.NewEngine(fingerprint.WithDialer(s.dialer))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Scan runs the full target×port matrix and returns one result per
// requested (host, port) pair, grouped by host with ports ascending.
//
// A probe or fingerprint failure degrades that one job's result (closed
// port, missing fingerprint); the scan itself always completes and
// covers every job. Ports are deduplicated before the matrix is built.
func (s *Scanner) Scan(ctx context.Context, targets []string, ports []int) []HostResult {
	ports = dedupePorts(ports)

	jobs := make([]job, 0, len(targets)*len(ports))
	for _, t := range targets {
		for _, p := range ports {
			jobs = append(jobs, job{target: t, port: p})
		}
	}

	s.statsMu.reset(Stats{
		TotalTargets: len(targets),
		TotalPorts:   len(jobs),
	})

	s.logger.Info("starting scan",
		"targets", len(targets),
		"ports", len(ports),
		"jobs", len(jobs),
		"concurrency", s.cfg.Concurrency,
		"timeout", s.cfg.Timeout,
	)
	start := time.Now()

	// Streaming bounded parallelism: SetLimit refills a finished slot
	// from the remaining queue immediately, it does not batch-and-wait.
	results := make([]PortResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, jb := range jobs {
		g.Go(func() error {
			// Each job writes a distinct index; no lock needed here.
			results[i] = s.runJob(gctx, jb)
			return nil
		})
	}
	// Jobs never return errors; failures degrade into their results.
	_ = g.Wait()

	s.logger.Info("scan complete",
		"jobs", len(jobs),
		"elapsed", time.Since(start),
	)

	return group(jobs, results)
}

// runJob probes one (host, port) pair and, if open, fingerprints it.
func (s *Scanner) runJob(ctx context.Context, jb job) PortResult {
	open := s.portOpen(ctx, jb.target, jb.port)

	var fp *fingerprint.Fingerprint
	if open {
		fp = s.engine.Fingerprint(ctx, jb.target, jb.port, s.cfg.Timeout)
	}

	result := PortResult{Port: jb.port, Open: open, Fingerprint: fp}
	s.recordResult(jb, result)
	return result
}

// portOpen determines liveness with a full TCP connect under the
// configured deadline. Any failure (refused, reset, timeout) means
// closed; liveness errors are never surfaced.
func (s *Scanner) portOpen(ctx context.Context, target string, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	conn, err := dialContext(ctx, s.dialer, net.JoinHostPort(target, fmt.Sprintf("%d", port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// recordResult updates shared statistics and emits a progress event.
// The critical section covers only counter updates and the
// non-blocking send; it never spans network I/O.
func (s *Scanner) recordResult(jb job, result PortResult) {
	snapshot := s.statsMu.record(result)

	if s.events == nil {
		return
	}
	state := "closed"
	if result.Open {
		state = "open"
	}
	ev := Event{
		Message: fmt.Sprintf("%s %s:%d", state, jb.target, jb.port),
		Target:  jb.target,
		Port:    jb.port,
		Stats:   snapshot,
	}
	select {
	case s.events <- ev:
	default:
		// Sink is full or unconsumed; dropping an event is cheaper
		// than stalling the scan.
	}
}

// Stats returns a snapshot of the run-wide counters.
func (s *Scanner) Stats() Stats {
	return s.statsMu.snapshot()
}

// RecordCVEMatches folds the post-scan vulnerability match count into
// the statistics. Matching runs during report assembly, after all jobs
// have completed, so this is called once by the report layer.
func (s *Scanner) RecordCVEMatches(n int) {
	s.statsMu.addCVEMatches(n)
}

// dialContext adapts a proxy.Dialer, which has no context-aware
// variant, to context cancellation.
func dialContext(ctx context.Context, dialer proxy.Dialer, address string) (net.Conn, error) {
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := dialer.Dial("tcp", address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if res := <-resultCh; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.conn, res.err
	}
}

// dedupePorts removes duplicates while keeping the first occurrence
// order; the final result ordering is imposed by group anyway.
func dedupePorts(ports []int) []int {
	seen := make(map[int]struct{}, len(ports))
	out := make([]int, 0, len(ports))
	for _, p := range ports {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// group assembles per-job results into the deterministic final shape:
// hosts sorted lexically, each host's ports ascending.
func group(jobs []job, results []PortResult) []HostResult {
	byHost := make(map[string][]PortResult)
	for i, jb := range jobs {
		byHost[jb.target] = append(byHost[jb.target], results[i])
	}

	out := make([]HostResult, 0, len(byHost))
	for target, ports := range byHost {
		sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })
		out = append(out, HostResult{Target: target, Ports: ports})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}
