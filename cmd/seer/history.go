package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seerhq/seer/internal/config"
	"github.com/seerhq/seer/internal/database"
	"github.com/seerhq/seer/internal/report"
)

// NewHistoryCmd creates the history command.
// This command queries crawl runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show crawl history stored in the database",
		Long: `History lists crawl runs persisted by previous 'seer crawl' invocations.

Without arguments it lists runs across all sites. With a seed URL it
filters to that site. The stored result of the most recent run can be
printed with --latest.

Examples:
  # List all crawled sites in the database
  seer history --sites

  # List crawl runs for a site
  seer history https://example.com

  # Print the latest stored result for a site as JSON
  seer history --latest --json https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("sites", "s", false,
		"List all crawled sites in the database")
	cmd.Flags().BoolP("latest", "l", false,
		"Print the latest stored crawl result for the given URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output the latest result in JSON format (with --latest)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("sites")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var seedURL string
	if len(args) > 0 {
		seedURL = args[0]
	}
	if latest && seedURL == "" {
		return errors.New("a seed URL is required with --latest (use --sites to see available sites)")
	}

	// Crawl results live in the XDG data directory
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSites {
		return listCrawledSites(ctx, db)
	}
	if latest {
		return showLatestResult(ctx, db, seedURL, jsonOutput)
	}
	return listCrawlHistory(ctx, db, seedURL)
}

// listCrawledSites lists all seed URLs that have crawl records.
func listCrawledSites(ctx context.Context, db *database.CrawlDB) error {
	sites, err := db.ListCrawledSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No crawled sites found in the database.")
		fmt.Println("\nUse 'seer crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Printf("Crawled sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'seer history <url>' to see crawl runs for a site.")

	return nil
}

// listCrawlHistory lists crawl runs, optionally filtered to one seed URL.
func listCrawlHistory(ctx context.Context, db *database.CrawlDB, seedURL string) error {
	runs, err := db.GetCrawlHistory(ctx, seedURL)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(runs) == 0 {
		if seedURL != "" {
			fmt.Printf("No crawl history found for %s\n", seedURL)
		} else {
			fmt.Println("No crawl history found.")
		}
		fmt.Println("\nUse 'seer crawl <url>' to crawl a site.")
		return nil
	}

	if seedURL != "" {
		fmt.Printf("Crawl history for %s (%d runs):\n\n", seedURL, len(runs))
	} else {
		fmt.Printf("Crawl history (%d runs):\n\n", len(runs))
	}
	fmt.Printf("  %-6s  %-20s  %-8s  %-6s  %-8s  %s\n", "ID", "Date", "Status", "Pages", "Elapsed", "Seed URL")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-8s  %-6d  %-8s  %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.PagesCrawled,
			fmt.Sprintf("%.1fs", run.ElapsedSeconds),
			run.SeedURL,
		)
	}

	fmt.Println("\nUse 'seer history --latest <url>' to print the latest stored result.")

	return nil
}

// showLatestResult prints the stored result of the most recent run.
func showLatestResult(ctx context.Context, db *database.CrawlDB, seedURL string, jsonOutput bool) error {
	result, err := db.GetLatestCrawlResult(ctx, seedURL)
	if err != nil {
		return fmt.Errorf("failed to get latest crawl result: %w", err)
	}
	if result == nil {
		fmt.Printf("No crawl history found for %s\n", seedURL)
		return nil
	}

	if jsonOutput {
		_, err = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()).Write(result)
		return err
	}
	_, err = report.NewMarkdownWriter(os.Stdout).Write(result)
	return err
}
