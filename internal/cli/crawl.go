package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

var (
	crawlMaxURLs  int
	crawlMaxDepth int
	crawlStrategy string
	crawlNoWatch  bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Recursively crawl a website into the project knowledge base",
	Long: `Submit a website for recursive crawling and ingestion.

A single crawl fans out into one job per discovered page; pages appear in
the status view as the backend reveals them, not at submission time.

Scrape strategies:
  equal-and-below  only URLs under the submitted path (default)
  same-hostname    any URL on the same host
  all              follow external links too

Examples:
  ingestctl crawl -p my-course https://example.com/docs
  ingestctl crawl -p my-course https://example.com --max-urls 200 --max-depth 4`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().IntVar(&crawlMaxURLs, "max-urls", 50, "maximum number of pages to crawl")
	crawlCmd.Flags().IntVar(&crawlMaxDepth, "max-depth", 2, "maximum link depth from the start URL")
	crawlCmd.Flags().StringVar(&crawlStrategy, "strategy", "equal-and-below", "scrape strategy")
	crawlCmd.Flags().BoolVar(&crawlNoWatch, "no-watch", false, "submit and exit without the live status view")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	project, err := requireProject()
	if err != nil {
		return err
	}

	u, err := url.Parse(args[0])
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL: %s", args[0])
	}

	ctx := context.Background()
	sess := newSession(project)
	sess.Start(ctx)
	defer sess.Close()

	submitErr := sess.CrawlWebsite(ctx, track.CrawlRequest{
		URL:      u.String(),
		MaxURLs:  crawlMaxURLs,
		MaxDepth: crawlMaxDepth,
		Strategy: crawlStrategy,
	})

	if crawlNoWatch {
		printJobs(sess.Jobs())
		return submitErr
	}
	return runWatch(sess)
}
