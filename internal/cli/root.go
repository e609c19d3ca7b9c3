// Package cli provides the command-line interface for ingestctl.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/client"
	"github.com/Center-for-AI-Innovation/ingestctl/internal/config"
	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	flagServer  string
	flagProject string
	verbose     bool

	// Global config and backend client
	cfg        config.Config
	backend    *client.Client
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ingestctl",
	Short: "Attach knowledge-base content to a project",
	Long: `Ingestctl submits files, websites, GitHub repositories and Canvas course
exports to a project's knowledge base and tracks their asynchronous
ingestion.

The backend exposes no push notifications; ingestctl polls its two read
views (in-progress and completed) and reconciles them into a live
per-item status, including the per-page jobs a crawl fans out into.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagServer != "" {
			cfg.ServerURL = flagServer
		}
		if flagProject != "" {
			cfg.Project = flagProject
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.NewLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		logCleanup = cleanup

		backend = client.New(cfg.ServerURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "backend server URL")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project to ingest into")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireProject resolves the target project from flag or config.
func requireProject() (string, error) {
	if cfg.Project == "" {
		return "", fmt.Errorf("no project set: use --project or INGESTCTL_PROJECT")
	}
	return cfg.Project, nil
}

// newSession creates a tracking session for the configured project.
func newSession(project string) *track.Session {
	return track.NewSession(backend, project, track.SessionConfig{})
}
