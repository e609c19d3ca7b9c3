package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

var (
	canvasFiles       bool
	canvasPages       bool
	canvasModules     bool
	canvasSyllabus    bool
	canvasAssignments bool
	canvasDiscussions bool
	canvasNoWatch     bool
)

var canvasCmd = &cobra.Command{
	Use:   "canvas <course-id>",
	Short: "Import a Canvas course export into the project knowledge base",
	Long: `Submit a Canvas (LMS) course for ingestion.

The backend exports the selected course content and ingests each exported
item as its own job.

Examples:
  ingestctl canvas -p my-course 41352
  ingestctl canvas -p my-course 41352 --syllabus --assignments`,
	Args: cobra.ExactArgs(1),
	RunE: runCanvas,
}

func init() {
	rootCmd.AddCommand(canvasCmd)
	canvasCmd.Flags().BoolVar(&canvasFiles, "files", true, "import course files")
	canvasCmd.Flags().BoolVar(&canvasPages, "pages", true, "import course pages")
	canvasCmd.Flags().BoolVar(&canvasModules, "modules", false, "import modules")
	canvasCmd.Flags().BoolVar(&canvasSyllabus, "syllabus", false, "import the syllabus")
	canvasCmd.Flags().BoolVar(&canvasAssignments, "assignments", false, "import assignments")
	canvasCmd.Flags().BoolVar(&canvasDiscussions, "discussions", false, "import discussions")
	canvasCmd.Flags().BoolVar(&canvasNoWatch, "no-watch", false, "submit and exit without the live status view")
}

func runCanvas(cmd *cobra.Command, args []string) error {
	project, err := requireProject()
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess := newSession(project)
	sess.Start(ctx)
	defer sess.Close()

	submitErr := sess.ImportCanvasCourse(ctx, track.CanvasRequest{
		CourseID:    args[0],
		Files:       canvasFiles,
		Pages:       canvasPages,
		Modules:     canvasModules,
		Syllabus:    canvasSyllabus,
		Assignments: canvasAssignments,
		Discussions: canvasDiscussions,
	})

	if canvasNoWatch {
		printJobs(sess.Jobs())
		return submitErr
	}
	return runWatch(sess)
}
