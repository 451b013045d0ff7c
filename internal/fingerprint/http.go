package fingerprint

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// httpReadSize is how much of the HTTP response we read. The status
// line and headers of interest always fit in the first kilobyte.
const httpReadSize = 1024

// httpFingerprint identifies a web server from its Server header.
// It opens a fresh connection and performs a minimal HEAD exchange
// rather than reusing the banner-probe connection, because HTTP
// servers say nothing until spoken to.
//
// Returns nil when the exchange could not complete within the
// deadline; the caller treats that as "no fingerprint", not an error.
func (e *Engine) httpFingerprint(ctx context.Context, host string, port int, timeout time.Duration) *Fingerprint {
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

	// HTTP/1.0 so the server closes the connection after responding;
	// HEAD so there is no body to drain.
	req := fmt.Sprintf("HEAD / HTTP/1.0\r\nHost: %s\r\nUser-Agent: %s\r\nConnection: close\r\n\r\n",
		host, e.userAgent)
	if _, err := conn.Write([]byte(req)); err != nil {
		return nil
	}

	buf := make([]byte, httpReadSize)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return nil
	}

	return parseHTTPResponse(string(buf[:n]))
}

// parseHTTPResponse extracts a service fingerprint from raw HTTP
// response bytes. The Server header is scanned case-insensitively; its
// value splits on the first "/" into product and version, and a value
// without a "/" is a product with no version.
func parseHTTPResponse(response string) *Fingerprint {
	var serverLine string
	for line := range strings.Lines(response) {
		if strings.HasPrefix(strings.ToLower(line), "server:") {
			serverLine = strings.TrimSpace(line)
			break
		}
	}

	fp := &Fingerprint{Service: "http"}
	if serverLine == "" {
		fp.Evidence = []string{"http server header: none"}
		return fp
	}

	fp.Evidence = []string{"http server header: " + truncate(serverLine)}

	_, value, _ := strings.Cut(serverLine, ":")
	fp.Product, fp.Version = parseProductVersion(strings.TrimSpace(value))
	return fp
}

// parseProductVersion splits a Server header value like
// "Apache/2.4.41 (Ubuntu)" into product and version.
func parseProductVersion(raw string) (product, version string) {
	if raw == "" {
		return "", ""
	}
	if p, v, ok := strings.Cut(raw, "/"); ok {
		return strings.TrimSpace(p), strings.TrimSpace(v)
	}
	return raw, ""
}
