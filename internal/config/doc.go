// Package config holds the run configuration for VulnFinder.
//
// A Config is populated from CLI flags, optionally pre-seeded from a
// .vulnfinder YAML file, validated once before any scanning begins,
// and then passed down by dependency injection; there is no global
// configuration state.
package config
