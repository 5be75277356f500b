// Package main provides the entry point for the restmap CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errPartialCrawl signals that the crawl finished and the report was written,
// but some requests failed. Execute maps it to exit code 2 so scripts can
// distinguish a partial map from a clean one.
var errPartialCrawl = errors.New("crawl completed with failed requests")

// NewRootCmd creates the root command for restmap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restmap",
		Short: "REST API endpoint discovery crawler",
		Long: `restmap maps the endpoint structure of REST APIs.

Starting from a seed URL, it follows hypermedia links found in JSON
responses (HAL _links, JSON:API links, plain href fields, and URL-shaped
values) and reconstructs the discovered endpoints as a tree.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, errPartialCrawl) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
