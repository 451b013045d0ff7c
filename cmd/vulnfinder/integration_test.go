package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/r4m3nj33zu5/VulnFinder/internal/config"
	"github.com/r4m3nj33zu5/VulnFinder/internal/report"
)

// startBannerService starts a loopback listener that greets every
// connection with the given banner. Cleanup stops it with the test.
func startBannerService(t *testing.T, banner string) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				_, _ = c.Write([]byte(banner))
				time.Sleep(100 * time.Millisecond)
			}(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// writeCVESnapshot writes a minimal CVE database file for the test.
func writeCVESnapshot(t *testing.T, entries string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cve_db.json")
	if err := os.WriteFile(path, []byte(entries), 0600); err != nil {
		t.Fatalf("failed to write CVE snapshot: %v", err)
	}
	return path
}

// TestRunScanEndToEnd scans a local SSH-like service and verifies the
// full path: probe, fingerprint, CVE match, JSON report.
func TestRunScanEndToEnd(t *testing.T) {
	t.Parallel()

	port := startBannerService(t, "SSH-2.0-OpenSSH_9.3p1 Ubuntu\r\n")
	cvePath := writeCVESnapshot(t, `[
		{
			"product": "OpenSSH",
			"version_range": ">=9.0.0,<9.4.0",
			"cve_id": "CVE-2024-0001",
			"summary": "test entry",
			"references": [],
			"remediation": "upgrade"
		}
	]`)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	cfg := config.New()
	cfg.Targets = []string{"127.0.0.1"}
	cfg.PortsSpec = fmt.Sprintf("%d", port)
	cfg.Timeout = 2 * time.Second
	cfg.Concurrency = 4
	cfg.CVEDatabase = cvePath
	cfg.JSONReport = true
	cfg.ReportFile = reportPath
	cfg.SaveToDB = false

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := runScan(ctx, cfg, logger); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if len(rep.Hosts) != 1 {
		t.Fatalf("report hosts = %d, want 1", len(rep.Hosts))
	}
	host := rep.Hosts[0]
	if host.Target != "127.0.0.1" {
		t.Errorf("target = %q, want 127.0.0.1", host.Target)
	}
	if len(host.Ports) != 1 {
		t.Fatalf("open ports = %d, want 1", len(host.Ports))
	}

	p := host.Ports[0]
	if p.Port != port {
		t.Errorf("port = %d, want %d", p.Port, port)
	}
	if p.Service != "ssh" {
		t.Errorf("service = %q, want ssh", p.Service)
	}
	if p.Product != "OpenSSH" {
		t.Errorf("product = %q, want OpenSSH", p.Product)
	}
	if p.Version != "9.3.1" {
		t.Errorf("version = %q, want 9.3.1", p.Version)
	}
	if len(p.CVEs) != 1 || p.CVEs[0].CVEID != "CVE-2024-0001" {
		t.Errorf("cves = %+v, want one CVE-2024-0001 match", p.CVEs)
	}
}

// TestRunScanMissingCVEDatabase verifies that scanning refuses to start
// without a loadable snapshot.
func TestRunScanMissingCVEDatabase(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.Targets = []string{"127.0.0.1"}
	cfg.PortsSpec = "22"
	cfg.CVEDatabase = filepath.Join(t.TempDir(), "absent.json")
	cfg.SaveToDB = false

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if err := runScan(context.Background(), cfg, logger); err == nil {
		t.Error("runScan() without CVE snapshot succeeded, want error")
	}
}

// TestRunScanClosedPort verifies that a closed port yields an empty
// report rather than an error.
func TestRunScanClosedPort(t *testing.T) {
	t.Parallel()

	// Reserve a port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cvePath := writeCVESnapshot(t, `[]`)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	cfg := config.New()
	cfg.Targets = []string{"127.0.0.1"}
	cfg.PortsSpec = fmt.Sprintf("%d", port)
	cfg.Timeout = 1 * time.Second
	cfg.Concurrency = 4
	cfg.CVEDatabase = cvePath
	cfg.JSONReport = true
	cfg.ReportFile = reportPath
	cfg.SaveToDB = false

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if err := runScan(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if got := rep.OpenPortCount(); got != 0 {
		t.Errorf("open port count = %d, want 0", got)
	}
}
