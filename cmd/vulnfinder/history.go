package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/r4m3nj33zu5/VulnFinder/internal/config"
	"github.com/r4m3nj33zu5/VulnFinder/internal/database"
	"github.com/r4m3nj33zu5/VulnFinder/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [scan-id]",
		Short: "Show past scan runs",
		Long: `History lists past scan runs from the local database, newest first.
Pass a scan id to re-render that run's full report.

Examples:
  # List the last 20 runs
  vulnfinder history

  # Re-render the report of run 12
  vulnfinder history 12

  # Same report as JSON
  vulnfinder history 12 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false, "Render a stored report as JSON")
	cmd.Flags().BoolP("evidence", "e", false, "Include raw fingerprint evidence")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// mode=rw: listing history must not create an empty database
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no scan history found (run a scan first): %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid scan id %q", args[0])
		}
		return showStoredReport(cmd, db, id)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listRuns(cmd, db, limit)
}

// listRuns prints a one-line summary per stored run.
func listRuns(cmd *cobra.Command, db *database.ScanDB, limit int) error {
	records, err := db.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no scans recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tTARGETS\tOPEN\tSERVICES\tCVES")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04"),
			strings.Join(rec.Targets, " "),
			rec.OpenPorts,
			rec.ServicesIdentified,
			rec.CVEsMatched,
		)
	}
	return w.Flush()
}

// showStoredReport re-renders one stored report.
func showStoredReport(cmd *cobra.Command, db *database.ScanDB, id int64) error {
	rep, err := db.GetReport(cmd.Context(), id)
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withEvidence, err := cmd.Flags().GetBool("evidence")
	if err != nil {
		return err
	}

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		var opts []report.TableWriterOption
		if withEvidence {
			opts = append(opts, report.WithEvidence())
		}
		writer = report.NewTableWriter(cmd.OutOrStdout(), opts...)
	}

	_, err = writer.Write(rep)
	return err
}
