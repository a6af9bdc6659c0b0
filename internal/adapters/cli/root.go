// Package cli holds the cobra commands of the offline indexer: scraping the
// program pages, building the lexical index and querying it for diagnostics.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kirillkom/program-assistant/internal/core/ports"
)

// Services builds dependencies on demand so each command only loads what it
// needs. Scraping must work before any index exists.
type Services interface {
	Scraper() (ports.CorpusScraper, error)
	IndexBuilder() (ports.IndexBuilder, error)
	Searcher(ctx context.Context) (ports.ChunkSearcher, error)
	Answerer(ctx context.Context) (ports.QuestionAnswerer, error)
}

// NewRootCmd assembles the command tree. defaultURLs seeds the scrape command.
func NewRootCmd(services Services, defaultURLs []string) *cobra.Command {
	root := &cobra.Command{
		Use:   "indexer",
		Short: "Build and inspect the program knowledge base",
		Long: `Offline tooling for the program assistant.
Scrape program pages into the document store, fit the lexical index over it,
and run searches or full questions against the result.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newScrapeCmd(services, defaultURLs),
		newBuildCmd(services),
		newSearchCmd(services),
		newAskCmd(services),
	)
	return root
}
