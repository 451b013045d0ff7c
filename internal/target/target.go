package target

import (
	"fmt"
	"net/netip"
	"strings"
)

// MaxExpandedTargets bounds how many hosts a single expression may
// expand to. The scan orchestrator builds its full job matrix eagerly,
// so this cap is what keeps memory and socket pressure proportional to
// what the operator actually asked for.
const MaxExpandedTargets = 4096

// Parse expands a target expression into a list of host strings.
// The returned hosts are ready to hand to the scanner as-is: IP
// literals in canonical form, hostnames unchanged.
func Parse(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("invalid target: empty expression")
	}

	if addr, err := netip.ParseAddr(input); err == nil {
		return []string{addr.String()}, nil
	}

	if prefix, err := netip.ParsePrefix(input); err == nil {
		return expandPrefix(prefix)
	}

	// Only treat a dashed expression as an IP range when the left side
	// is an address; hostnames like "my-host.example.com" contain
	// dashes too.
	if start, end, ok := strings.Cut(input, "-"); ok {
		if _, err := netip.ParseAddr(strings.TrimSpace(start)); err == nil {
			return expandRange(strings.TrimSpace(start), strings.TrimSpace(end))
		}
	}

	if isValidHostname(input) {
		return []string{input}, nil
	}

	return nil, fmt.Errorf("invalid target: %q is not an IP, CIDR, range, or hostname", input)
}

// expandPrefix lists the usable host addresses of a CIDR block.
// The network and broadcast addresses of IPv4 blocks smaller than /31
// are skipped, matching what operators expect from "scan this subnet".
func expandPrefix(prefix netip.Prefix) ([]string, error) {
	prefix = prefix.Masked()

	// /31, /32 and their IPv6 equivalents have no network/broadcast
	// convention; every address is a host.
	skipEdges := prefix.Addr().Is4() && prefix.Bits() < 31

	var out []string
	first := true
	for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
		if skipEdges && first {
			first = false
			continue
		}
		out = append(out, addr.String())
		if len(out) > MaxExpandedTargets {
			return nil, fmt.Errorf("invalid target: %s expands beyond %d hosts", prefix, MaxExpandedTargets)
		}
	}
	if skipEdges && len(out) > 0 {
		out = out[:len(out)-1] // drop broadcast
	}
	return out, nil
}

// expandRange lists every IPv4 address from start to end inclusive.
// Only IPv4 ranges are supported; IPv6 ranges are rejected because an
// inclusive v6 range is almost always an input mistake.
func expandRange(startStr, endStr string) ([]string, error) {
	start, err := netip.ParseAddr(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid target: bad range start %q", startStr)
	}
	end, err := netip.ParseAddr(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid target: bad range end %q", endStr)
	}
	if !start.Is4() || !end.Is4() {
		return nil, fmt.Errorf("invalid target: IP ranges support IPv4 only")
	}
	if start.Compare(end) > 0 {
		return nil, fmt.Errorf("invalid target: range start must not exceed range end")
	}

	var out []string
	for addr := start; addr.Compare(end) <= 0; addr = addr.Next() {
		out = append(out, addr.String())
		if len(out) > MaxExpandedTargets {
			return nil, fmt.Errorf("invalid target: range expands beyond %d hosts", MaxExpandedTargets)
		}
	}
	return out, nil
}

// isValidHostname reports whether value is a plausible DNS hostname
// under the usual RFC 1123 label rules.
func isValidHostname(value string) bool {
	if value == "" || len(value) > 253 {
		return false
	}
	for label := range strings.SplitSeq(value, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
				return false
			}
		}
	}
	return true
}
