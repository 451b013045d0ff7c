package fingerprint

import (
	"context"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxEvidenceLen caps every stored evidence string. Banners and
// certificate names are attacker-controlled; the cap bounds memory and
// downstream rendering cost.
const maxEvidenceLen = 200

// defaultUserAgent identifies the scanner in HTTP probes. A descriptive
// User-Agent lets operators attribute scanner traffic in their logs.
const defaultUserAgent = "vulnfinder"

// Fingerprint is the typed output of one fingerprinting attempt.
// It is immutable once returned.
type Fingerprint struct {
	// Service is the identified service label: "ssh", "http", "tls",
	// or "tcp" for the generic terminal case.
	Service string `json:"service"`

	// Product is the identified product name, empty when unknown.
	Product string `json:"product,omitempty"`

	// Version is the identified product version, empty when unknown.
	// SSH versions are normalized to a 3-component numeric form so
	// they compose with semantic CVE version ranges.
	Version string `json:"version,omitempty"`

	// Evidence records the raw observations the identification rests
	// on, in collection order, each capped at 200 characters.
	Evidence []string `json:"evidence"`
}

// Engine performs service fingerprinting.
//
// Design decision: We take a proxy.Dialer rather than dialing directly
// because:
//  1. Scans can be routed through a SOCKS5 proxy without the engine knowing
//  2. Tests inject dialers that serve canned protocol exchanges
//  3. It matches the dialer the scan orchestrator probes with
type Engine struct {
	// dialer establishes TCP connections. Defaults to a plain
	// net.Dialer.
	dialer proxy.Dialer

	// userAgent is sent with HTTP probes.
	userAgent string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialer sets the dialer used for all probe connections.
func WithDialer(d proxy.Dialer) Option {
	return func(e *Engine) {
		e.dialer = d
	}
}

// WithUserAgent sets the User-Agent header sent with HTTP probes.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// NewEngine creates a fingerprinting engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		dialer:    &net.Dialer{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fingerprint runs the identification chain against host:port, which
// the caller has already determined to be open. It never fails: the
// result is nil only when a protocol-specific probe (HTTP, TLS) could
// not complete a network exchange; every other path terminates in at
// least a generic "tcp" classification.
//
// Priority order, first match wins:
//  1. banner probe (passive read)
//  2. "SSH-" banner prefix: ssh classification with normalized version
//  3. port 80/8080: HTTP Server-header identification
//  4. port 443: TLS certificate evidence, HTTP fallback on handshake failure
//  5. generic "tcp" with whatever the banner probe captured
func (e *Engine) Fingerprint(ctx context.Context, host string, port int, timeout time.Duration) *Fingerprint {
	banner, gotBanner := e.bannerProbe(ctx, host, port, timeout)

	if gotBanner && strings.HasPrefix(strings.TrimSpace(banner), "SSH-") {
		return sshFromBanner(strings.TrimSpace(banner))
	}

	if port == 80 || port == 8080 {
		return e.httpFingerprint(ctx, host, port, timeout)
	}

	if port == 443 {
		if fp := e.tlsFingerprint(ctx, host, port, timeout); fp != nil {
			return fp
		}
		return e.httpFingerprint(ctx, host, port, timeout)
	}

	fp := &Fingerprint{Service: "tcp", Evidence: []string{}}
	if gotBanner {
		fp.Evidence = append(fp.Evidence, "banner: "+truncate(banner))
	}
	return fp
}

// dialContext dials through the configured dialer while respecting
// context cancellation. proxy.Dialer has no context-aware variant, so
// the dial runs in its own goroutine and is abandoned on cancellation.
func (e *Engine) dialContext(ctx context.Context, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := e.dialer.Dial("tcp", address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			// Reap the connection if the dial eventually succeeds.
			if res := <-resultCh; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.conn, res.err
	}
}

// truncate caps an evidence string at maxEvidenceLen characters.
// Truncation is by rune so multi-byte banners are not cut mid-sequence.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxEvidenceLen {
		return s
	}
	return string(runes[:maxEvidenceLen])
}
