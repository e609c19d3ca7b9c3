package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var githubNoWatch bool

var githubCmd = &cobra.Command{
	Use:   "github <repo-url>",
	Short: "Import a GitHub repository into the project knowledge base",
	Long: `Submit a GitHub repository for ingestion.

The backend clones the repository and ingests its files one by one; each
file shows up as its own job in the status view.

Examples:
  ingestctl github -p my-course https://github.com/org/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runGithub,
}

func init() {
	rootCmd.AddCommand(githubCmd)
	githubCmd.Flags().BoolVar(&githubNoWatch, "no-watch", false, "submit and exit without the live status view")
}

func runGithub(cmd *cobra.Command, args []string) error {
	project, err := requireProject()
	if err != nil {
		return err
	}

	repoURL := strings.TrimSuffix(args[0], "/")
	if !strings.Contains(repoURL, "github.com/") {
		return fmt.Errorf("not a GitHub repository URL: %s", args[0])
	}

	ctx := context.Background()
	sess := newSession(project)
	sess.Start(ctx)
	defer sess.Close()

	submitErr := sess.ImportGithubRepo(ctx, repoURL)

	if githubNoWatch {
		printJobs(sess.Jobs())
		return submitErr
	}
	return runWatch(sess)
}
