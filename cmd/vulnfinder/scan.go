package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/proxy"

	"github.com/r4m3nj33zu5/VulnFinder/internal/config"
	"github.com/r4m3nj33zu5/VulnFinder/internal/cvedb"
	"github.com/r4m3nj33zu5/VulnFinder/internal/database"
	"github.com/r4m3nj33zu5/VulnFinder/internal/fingerprint"
	vflog "github.com/r4m3nj33zu5/VulnFinder/internal/log"
	"github.com/r4m3nj33zu5/VulnFinder/internal/report"
	"github.com/r4m3nj33zu5/VulnFinder/internal/scanner"
	"github.com/r4m3nj33zu5/VulnFinder/internal/target"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [target...]",
		Short: "Scan authorized targets for open ports, services, and CVEs",
		Long: `Scan probes the given targets for open TCP ports, fingerprints the
services behind them, and matches product/version findings against a
local CVE snapshot.

Targets may be single IPs, CIDR blocks, IPv4 ranges, or hostnames:
  192.168.1.10  192.168.1.0/24  10.0.0.1-10.0.0.50  host.example.com

Only scan systems you own or are explicitly authorized to test; pass
--authorized to confirm.

Examples:
  # Scan a subnet on the default ports
  vulnfinder scan --authorized 192.168.1.0/24

  # Explicit ports, JSON report to a file
  vulnfinder scan --authorized --ports 22,80,443 --json -o report.json 10.0.0.5

  # Route probes through a SOCKS5 proxy
  vulnfinder scan --authorized --socks5 127.0.0.1:1080 host.example.com

Configuration file (.vulnfinder) example:
  defaults:
    timeout: 2s
    concurrency: 100
  profiles:
    web: "80,443,8080,8443"
    admin: "22,3389,5900"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Port selection flags
	cmd.Flags().StringP("ports", "p", "",
		"Comma-separated list of ports to scan (default: 22,53,80,443,445,3389)")
	cmd.Flags().StringP("ports-file", "P", "",
		"File with one port per line, merged with --ports")
	cmd.Flags().String("profile", "",
		"Named port profile from the configuration file")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each probe")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of in-flight probes")
	cmd.Flags().StringP("cve-db", "d", config.DefaultCVEDatabase,
		"Path to the CVE snapshot (JSON)")
	cmd.Flags().StringP("socks5", "x", "",
		"Route all probe traffic through a SOCKS5 proxy (host:port)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vulnfinder in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("evidence", "e", false,
		"Include raw fingerprint evidence in the report")

	// History flags
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the scan history database")

	// Authorization
	cmd.Flags().Bool("authorized", false,
		"Confirm you own or are authorized to scan the targets")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the optional config file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging; all attribute values are scrubbed of
	// control characters because banners come off untrusted sockets.
	logger := vflog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// optional .vulnfinder file. File defaults are applied first, then any
// flag the user actually set wins over them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.New()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was given, silently scan with built-in defaults.
	var file *config.File
	if found := config.FindFile(configPath); found != "" {
		file, err = config.LoadFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, err
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	// A profile names a port list in the config file. An explicit
	// --ports flag still overrides it below.
	profile, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	if profile != "" {
		if file == nil {
			return nil, fmt.Errorf("--profile %s requires a configuration file", profile)
		}
		ports, ok := file.Profiles[profile]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q in configuration file", profile)
		}
		cfg.PortsSpec = ports
	}

	// Flag values override file defaults only when the user set them.
	if cmd.Flags().Changed("timeout") || cfg.Timeout == 0 {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("concurrency") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("ports") || cfg.PortsSpec == "" {
		if cfg.PortsSpec, err = cmd.Flags().GetString("ports"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("cve-db") {
		if cfg.CVEDatabase, err = cmd.Flags().GetString("cve-db"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("socks5") {
		if cfg.SOCKS5Proxy, err = cmd.Flags().GetString("socks5"); err != nil {
			return nil, err
		}
	}

	if cfg.PortsFile, err = cmd.Flags().GetString("ports-file"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ShowEvidence, err = cmd.Flags().GetBool("evidence"); err != nil {
		return nil, err
	}
	if cfg.Authorized, err = cmd.Flags().GetBool("authorized"); err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the target expressions
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Expand every target expression up front so the operator learns
	// about a typo before any packet is sent.
	hosts, err := expandTargets(cfg.Targets)
	if err != nil {
		return err
	}

	ports, err := config.LoadPorts(cfg.PortsSpec, cfg.PortsFile)
	if err != nil {
		return err
	}

	// A missing CVE snapshot is fatal: scanning without matching would
	// silently produce a report that looks clean.
	db, err := cvedb.Load(cfg.CVEDatabase)
	if err != nil {
		return fmt.Errorf("failed to load CVE database %s: %w", cfg.CVEDatabase, err)
	}

	logger.Info("starting scan",
		"targets", len(hosts),
		"ports", len(ports),
		"cveEntries", db.Len(),
		"concurrency", cfg.Concurrency,
		"socks5", cfg.SOCKS5Proxy != "",
	)

	dialer, err := buildDialer(cfg)
	if err != nil {
		return err
	}

	// Open the history database if saving is enabled. History is best
	// effort: a broken database warns but never blocks the scan.
	var history *database.ScanDB
	if cfg.SaveToDB {
		history, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("scan history disabled", "error", err)
			history = nil
		} else {
			defer history.Close()
		}
	}

	engine := fingerprint.NewEngine(fingerprint.WithDialer(dialer))
	scanOpts := []scanner.Option{
		scanner.WithDialer(dialer),
		scanner.WithFingerprinter(engine),
		scanner.WithLogger(logger),
	}

	// Progress lines are operator feedback; machine-readable runs
	// stay quiet.
	var events chan scanner.Event
	done := make(chan struct{})
	if cfg.JSONReport {
		close(done)
	} else {
		events = make(chan scanner.Event, 256)
		scanOpts = append(scanOpts, scanner.WithEvents(events))
		go func() {
			defer close(done)
			for ev := range events {
				fmt.Fprintf(os.Stderr, "progress %d/%d - %s:%d (%s)\n",
					ev.Stats.Scanned, ev.Stats.TotalPorts, ev.Target, ev.Port, ev.Message)
			}
		}()
	}

	s := scanner.New(scanner.Config{
		Timeout:     cfg.Timeout,
		Concurrency: cfg.Concurrency,
	}, scanOpts...)

	startTime := time.Now()
	results := s.Scan(ctx, hosts, ports)
	if events != nil {
		close(events)
	}
	<-done

	rep := report.Build(results, db.Match)
	s.RecordCVEMatches(rep.TotalCVEs())
	stats := s.Stats()

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "scan completed in %s: %d open ports, %d services, %d CVEs\n",
		elapsed.Round(time.Millisecond), stats.OpenPorts, stats.ServicesIdentified, stats.CVEsMatched)

	if history != nil {
		if _, err := history.Save(ctx, cfg.Targets, stats, rep); err != nil {
			logger.Warn("failed to save scan history", "error", err)
		}
	}

	if err := outputReport(cfg, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// A cancelled scan still produced a partial report above; surface
	// the cancellation so the exit code reflects it.
	return ctx.Err()
}

// expandTargets expands all target expressions and enforces the global
// host cap, so a handful of large CIDR blocks cannot multiply past what
// a single expression is allowed to produce.
func expandTargets(expressions []string) ([]string, error) {
	var hosts []string
	for _, expr := range expressions {
		expanded, err := target.Parse(expr)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, expanded...)
		if len(hosts) > target.MaxExpandedTargets {
			return nil, fmt.Errorf("too many targets: expansion exceeds %d hosts", target.MaxExpandedTargets)
		}
	}
	return hosts, nil
}

// buildDialer returns the dialer all probes use: direct connections by
// default, or a SOCKS5 proxy when configured.
func buildDialer(cfg *config.Config) (proxy.Dialer, error) {
	if cfg.SOCKS5Proxy == "" {
		return proxy.Direct, nil
	}
	dialer, err := proxy.SOCKS5("tcp", cfg.SOCKS5Proxy, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", cfg.SOCKS5Proxy, err)
	}
	return dialer, nil
}

// outputReport renders the report in the requested format.
func outputReport(cfg *config.Config, rep *report.Report) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports enumerate vulnerable services, so the file is
		// readable by the owner only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		var opts []report.TableWriterOption
		if cfg.ShowEvidence {
			opts = append(opts, report.WithEvidence())
		}
		writer = report.NewTableWriter(output, opts...)
	}

	_, err := writer.Write(rep)
	return err
}
