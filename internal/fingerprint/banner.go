package fingerprint

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// bannerReadSize is how many bytes of an unsolicited banner we keep.
// Protocol greetings that matter (SSH, SMTP, FTP) fit comfortably.
const bannerReadSize = 256

// bannerProbe connects to host:port and passively reads whatever the
// service volunteers within the deadline, without sending a single
// byte. Carriage returns and newlines are flattened to spaces so the
// banner is a single line.
//
// ok is false when the connection or the read failed; an empty banner
// from a service that closes immediately still counts as a successful
// probe.
func (e *Engine) bannerProbe(ctx context.Context, host string, port int, timeout time.Duration) (banner string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := e.dialContext(ctx, joinHostPort(host, port))
	if err != nil {
		return "", false
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", false
	}

	buf := make([]byte, bannerReadSize)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return "", false
	}

	replacer := strings.NewReplacer("\r", " ", "\n", " ")
	return replacer.Replace(string(buf[:n])), true
}

// joinHostPort formats a dial address, bracketing IPv6 literals.
func joinHostPort(host string, port int) string {
	if strings.Contains(host, ":") {
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}
