// Package cvedb loads the static CVE snapshot and matches identified
// services against it.
//
// The database is a JSON array of entries, each describing one known
// weakness for a product together with the version range it applies to.
// It is loaded once at startup and is read-only for the lifetime of a
// scan; there is no live feed and no update mechanism.
//
// Matching is a pure function of (product, version) and never fails:
// malformed range expressions or unparseable versions exclude the entry
// instead of raising an error.
package cvedb
