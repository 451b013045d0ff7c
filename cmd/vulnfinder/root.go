// Package main provides the entry point for the VulnFinder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for VulnFinder.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vulnfinder",
		Short: "Network vulnerability scanner for authorized targets",
		Long: `VulnFinder is a network vulnerability scanner for systems you own or are
authorized to test. It probes targets for open ports, fingerprints the
services behind them, and matches the findings against a local CVE snapshot.

Every scan requires the --authorized flag: an explicit statement that you
own the targets or have written permission to test them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
