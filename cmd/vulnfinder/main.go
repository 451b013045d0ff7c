// Package main provides the entry point for the VulnFinder CLI.
//
// VulnFinder is a network vulnerability scanner for systems you own or
// are authorized to test. It probes targets for open ports, fingerprints
// the services behind them, and matches the findings against a local
// CVE snapshot.
//
// Usage:
//
//	vulnfinder scan --authorized 192.168.1.0/24
//	vulnfinder scan --authorized --ports 22,80,443 host.example.com
//
// See --help for all available options.
package main

// main is the entry point for VulnFinder.
func main() {
	Execute()
}
