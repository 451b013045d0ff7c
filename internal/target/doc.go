// Package target parses scan target expressions into host lists.
//
// A target expression is one of: a single IPv4/IPv6 literal, a CIDR
// block, an IPv4 range ("10.0.0.1-10.0.0.10"), or a hostname. CIDR and
// range expansion is capped so a typo like /8 cannot materialize
// millions of jobs.
package target
