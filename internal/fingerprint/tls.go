package fingerprint

import (
	"context"
	"crypto/tls"
	"net"
	"strings"
	"time"
)

// tlsFingerprint performs a TLS handshake and records the peer
// certificate's distinguished names as evidence. The handshake accepts
// any certificate: this engine fingerprints service identity, not
// certificate trust, and self-signed or expired certificates are
// exactly the endpoints worth identifying.
//
// No product or version is inferred from TLS alone. Returns nil when
// the handshake fails, letting the caller fall back to plain HTTP on
// the same port.
func (e *Engine) tlsFingerprint(ctx context.Context, host string, port int, timeout time.Duration) *Fingerprint {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := e.dialContext(ctx, joinHostPort(host, port))
	if err != nil {
		return nil
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil
	}

	cfg := &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // Fingerprinting collects certificates, it does not trust them
	}
	// SNI takes a hostname; IP literals are omitted per RFC 6066.
	if net.ParseIP(host) == nil {
		cfg.ServerName = host
	}

	tlsConn := tls.Client(conn, cfg)
	defer tlsConn.Close()
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil
	}

	fp := &Fingerprint{Service: "tls", Evidence: []string{}}
	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		fp.Evidence = append(fp.Evidence, "tls cert: unavailable")
		return fp
	}

	cert := certs[0]
	fp.Evidence = append(fp.Evidence,
		"tls cert subject: "+truncate(cert.Subject.String()),
		"tls cert issuer: "+truncate(cert.Issuer.String()),
	)
	if len(cert.DNSNames) > 0 {
		fp.Evidence = append(fp.Evidence, "tls cert dns names: "+truncate(strings.Join(cert.DNSNames, ", ")))
	}
	return fp
}
