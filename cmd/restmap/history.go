package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/restmap/restmap/internal/config"
	"github.com/restmap/restmap/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [start-url]",
		Short: "List saved crawls or show the latest result for a URL",
		Long: `History reads the local crawl database.

Without arguments it lists all saved crawl runs. With a start URL it prints
the most recent saved result for that URL.

Examples:
  # List all saved crawls
  restmap history

  # Show the latest saved result for an API
  restmap history https://api.example.com

  # Same, as a nested endpoint tree
  restmap history --format tree https://api.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("format", "f", "json",
		"Result format: json, compact, hierarchical, tree, text, or markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'restmap crawl' first): %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		return listRuns(cmd, db)
	}
	return showLatestResult(cmd, db, args[0])
}

// listRuns prints one line per saved crawl run.
func listRuns(cmd *cobra.Command, db *database.CrawlDB) error {
	runs, err := db.ListRuns(cmd.Context(), "")
	if err != nil {
		return fmt.Errorf("failed to list crawl runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved crawls.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTART URL\tCOMPLETED\tURLS\tENDPOINTS\tFAILED")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.StartURL,
			run.CompletedAt.Local().Format(time.DateTime),
			run.URLsProcessed,
			run.EndpointCount,
			run.FailedRequests,
		)
	}
	return w.Flush()
}

// showLatestResult prints the most recent saved result for the start URL.
func showLatestResult(cmd *cobra.Command, db *database.CrawlDB, startURL string) error {
	result, err := db.GetLatestCrawlResult(cmd.Context(), startURL)
	if err != nil {
		return fmt.Errorf("failed to load crawl result: %w", err)
	}
	if result == nil {
		return fmt.Errorf("no saved crawl for %s", startURL)
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	writer, err := newReportWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, err = writer.Write(result)
	return err
}
