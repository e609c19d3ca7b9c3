package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var uploadNoWatch bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload documents into the project knowledge base",
	Long: `Upload one or more files for ingestion.

Each file is submitted individually; the live status view then follows
every item through upload, parsing and embedding until the backend
reports it complete.

Examples:
  ingestctl upload -p my-course syllabus.pdf
  ingestctl upload -p my-course notes/*.pdf --no-watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadNoWatch, "no-watch", false, "submit and exit without the live status view")
}

func runUpload(cmd *cobra.Command, args []string) error {
	project, err := requireProject()
	if err != nil {
		return err
	}

	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("invalid file: %w", err)
		}
	}

	ctx := context.Background()
	sess := newSession(project)
	sess.Start(ctx)
	defer sess.Close()

	submitErr := sess.UploadDocuments(ctx, args)

	if uploadNoWatch {
		printJobs(sess.Jobs())
		return submitErr
	}
	return runWatch(sess)
}
