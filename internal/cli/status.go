package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the backend's current ingestion snapshots",
	Long: `Fetch and print the project's two read views once: items the backend
is still working on, and items that finished.

Examples:
  ingestctl status -p my-course`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	project, err := requireProject()
	if err != nil {
		return err
	}

	ctx := context.Background()

	progress, err := backend.InProgress(ctx, project)
	if err != nil {
		return fmt.Errorf("fetch in-progress: %w", err)
	}
	completed, err := backend.Completed(ctx, project)
	if err != nil {
		return fmt.Errorf("fetch completed: %w", err)
	}

	if len(progress) == 0 && len(completed) == 0 {
		fmt.Println("No ingestion activity for this project")
		return nil
	}

	if len(progress) > 0 {
		fmt.Printf("In progress (%d):\n", len(progress))
		for _, e := range progress {
			if e.BaseURL != "" {
				fmt.Printf("  %s  (from %s)\n", e.Key, e.BaseURL)
			} else {
				fmt.Printf("  %s\n", e.Key)
			}
		}
	}
	if len(completed) > 0 {
		fmt.Printf("Completed (%d):\n", len(completed))
		for _, e := range completed {
			fmt.Printf("  %s\n", e.Key)
		}
	}
	return nil
}

// printJobs dumps a ledger snapshot as a plain table, used by --no-watch.
func printJobs(jobs []track.Job) {
	if len(jobs) == 0 {
		fmt.Println("Nothing submitted")
		return
	}
	fmt.Printf("%-12s %-12s %s\n", "STATUS", "KIND", "ITEM")
	fmt.Println("--------------------------------------------------------")
	for _, j := range jobs {
		fmt.Printf("%-12s %-12s %s\n", j.Status, j.Kind, j.Key)
		if j.ErrorDetail != "" {
			fmt.Printf("  error: %s\n", j.ErrorDetail)
		}
	}
}
