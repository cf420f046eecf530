package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	var (
		keyword string
		maxJobs int
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape and prints the listings as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Config()
			if maxJobs <= 0 {
				maxJobs = cfg.Scrape.DefaultMaxResults
			}
			if maxJobs > cfg.Scrape.MaxResultsLimit {
				maxJobs = cfg.Scrape.MaxResultsLimit
			}

			records, err := appInstance.Orchestrator().Scrape(cmd.Context(), keyword, maxJobs)
			if err != nil {
				return fmt.Errorf("scrape: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return fmt.Errorf("encode listings: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword")
	cmd.Flags().IntVarP(&maxJobs, "max", "n", 0, "maximum number of listings (default from config)")
	_ = cmd.MarkFlagRequired("keyword")
	return cmd
}
