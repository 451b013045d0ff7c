package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name searched for when
// no explicit path is given.
const DefaultConfigFile = ".vulnfinder"

// ErrConfigNotFound is returned when the configuration file does not
// exist. Callers decide whether that is fatal based on whether the
// path was explicitly requested.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk .vulnfinder configuration. It pre-seeds defaults
// that CLI flags can still override.
type File struct {
	// Defaults overrides the built-in defaults for every scan.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Profiles are named port lists selectable with --profile, e.g.
	//   profiles:
	//     web: "80,443,8080,8443"
	//     admin: "22,3389,5900"
	Profiles map[string]string `yaml:"profiles,omitempty"`
}

// Defaults are the overridable scan defaults of a config file.
type Defaults struct {
	// Timeout is a Go duration string ("800ms", "2s").
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency is the in-flight job ceiling.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Ports is a comma-separated default port list.
	Ports string `yaml:"ports,omitempty"`

	// CVEDatabase is the default snapshot path.
	CVEDatabase string `yaml:"cveDatabase,omitempty"`

	// SOCKS5Proxy routes scans through a proxy by default.
	SOCKS5Proxy string `yaml:"socks5Proxy,omitempty"`
}

// LoadFile reads a .vulnfinder YAML file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]string)
	}
	return &f, nil
}

// FindFile locates the configuration file: the explicit path if given,
// then .vulnfinder in the current directory, the XDG config directory,
// and the home directory. Returns "" when nothing is found.
func FindFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Apply folds the file's defaults into cfg. Only fields the file
// actually sets are touched, so flag values and built-in defaults
// survive; flags that the user set explicitly must be re-applied by
// the caller afterwards (the CLI layer knows which ones changed).
func (f *File) Apply(cfg *Config) error {
	if f.Defaults.Timeout != "" {
		d, err := time.ParseDuration(f.Defaults.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.Timeout = d
	}
	if f.Defaults.Concurrency > 0 {
		cfg.Concurrency = f.Defaults.Concurrency
	}
	if f.Defaults.Ports != "" {
		cfg.PortsSpec = f.Defaults.Ports
	}
	if f.Defaults.CVEDatabase != "" {
		cfg.CVEDatabase = f.Defaults.CVEDatabase
	}
	if f.Defaults.SOCKS5Proxy != "" {
		cfg.SOCKS5Proxy = f.Defaults.SOCKS5Proxy
	}
	return nil
}
