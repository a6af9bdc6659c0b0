package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newScrapeCmd(services Services, defaultURLs []string) *cobra.Command {
	var urls []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape program pages into the document store",
		Long: `Downloads every program page, saves raw and cleaned snapshots,
splits the text into overlapping chunks and rewrites the document store.
A failed page aborts the run and keeps the previous store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(urls) == 0 {
				return errors.New("no program urls configured")
			}
			scraper, err := services.Scraper()
			if err != nil {
				return err
			}
			n, err := scraper.Run(cmd.Context(), urls)
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d pages into %d chunks.\n", len(urls), n)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&urls, "url", "u", defaultURLs, "program page url (repeatable)")
	return cmd
}

func newBuildCmd(services Services) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Fit the lexical index over the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			builder, err := services.IndexBuilder()
			if err != nil {
				return err
			}
			if err := builder.Run(cmd.Context()); err != nil {
				return fmt.Errorf("build failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Index built.")
			return nil
		},
	}
}
