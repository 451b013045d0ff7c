package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// LoadPorts resolves the port list for a scan from an inline
// comma-separated spec and/or a ports file (one port per line, blank
// lines and "#" comments ignored). Both sources are merged. When
// neither is given, DefaultPorts is used.
//
// The result is deduplicated, ascending, and every port is validated
// to the 1-65535 range; port zero is rejected rather than silently
// meaning "any".
func LoadPorts(spec, file string) ([]int, error) {
	set := make(map[int]struct{})

	if spec != "" {
		for part := range strings.SplitSeq(spec, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			port, err := parsePort(part)
			if err != nil {
				return nil, err
			}
			set[port] = struct{}{}
		}
	}

	if file != "" {
		content, err := os.ReadFile(file) //nolint:gosec // User-provided ports file is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read ports file: %w", err)
		}
		for line := range strings.Lines(string(content)) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			port, err := parsePort(line)
			if err != nil {
				return nil, err
			}
			set[port] = struct{}{}
		}
	}

	if len(set) == 0 {
		return append([]int(nil), DefaultPorts...), nil
	}

	ports := make([]int, 0, len(set))
	for p := range set {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports, nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port value %q: must be 1-65535", value)
	}
	return port, nil
}
