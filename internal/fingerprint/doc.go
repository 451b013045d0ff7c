// Package fingerprint identifies the service listening on an open port
// from raw protocol evidence: unsolicited banners, HTTP response
// headers, and TLS certificates.
//
// Identification is an ordered chain of mutually exclusive attempts
// over the same connection primitives (SSH banner, then HTTP, then TLS
// with HTTP fallback, then generic TCP) rather than a type hierarchy.
// Every network step is individually deadline-bounded and a failing
// step falls through to the next applicable rule, so an unreliable or
// adversarial endpoint can degrade the result but never abort a scan.
package fingerprint
