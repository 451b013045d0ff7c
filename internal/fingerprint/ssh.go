package fingerprint

import "strings"

// sshFromBanner classifies an SSH service from its identification
// string. SSH banners have the form "SSH-2.0-OpenSSH_9.3p1 Debian-3":
// protocol version, then the software field, then optional comments.
//
// The product is fixed to "OpenSSH" because that is what the version
// grammar below understands; a non-OpenSSH banner still classifies as
// ssh but yields no version.
func sshFromBanner(banner string) *Fingerprint {
	fp := &Fingerprint{
		Service:  "ssh",
		Product:  "OpenSSH",
		Evidence: []string{"ssh banner: " + truncate(banner)},
	}

	parts := strings.SplitN(banner, "-", 3)
	if len(parts) < 3 {
		return fp
	}
	software, _, _ := strings.Cut(parts[2], " ")
	fp.Version = normalizeSSHVersion(software)
	return fp
}

// normalizeSSHVersion converts an OpenSSH software token into a
// 3-component dotted numeric version usable in semantic CVE ranges:
// "OpenSSH_9.3p1" becomes "9.3.1", "OpenSSH_9.7" becomes "9.7.0".
//
// Returns "" when any extracted component is non-numeric; the caller
// then reports the product without a version rather than feeding a
// malformed string into range matching.
func normalizeSSHVersion(raw string) string {
	version := strings.TrimSpace(raw)
	if idx := strings.LastIndex(version, "_"); idx != -1 {
		version = version[idx+1:]
	}

	numeric, patch, hasPatch := strings.Cut(version, "p")
	if !hasPatch {
		patch = "0"
	}

	major, rest, _ := strings.Cut(numeric, ".")
	minor, _, _ := strings.Cut(rest, ".")
	if minor == "" {
		minor = "0"
	}

	if !isDigits(major) || !isDigits(minor) || !isDigits(patch) {
		return ""
	}
	return major + "." + minor + "." + patch
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
