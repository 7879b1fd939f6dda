// Package main provides the entry point for the seer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for seer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seer",
		Short: "Bounded web crawler for threat-intelligence collection",
		Long: `Seer crawls websites from a seed URL within explicit depth and page
budgets, converts each page's main content to markdown, and extracts
structured metadata (contact details, headings, links, social profiles).

Results can be printed as JSON or markdown reports, persisted to a local
SQLite database for history queries, and exported as per-job files.`,
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
