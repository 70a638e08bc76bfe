// Package cli wires the command line: serve (the default), seed and passwd.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/entrypoint"
)

// NewRootCommand builds the classlib command tree. Running it without a
// subcommand starts the web server.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "classlib",
		Short: "Class Library - borrow and return books for a classroom",
		Long: `Class Library is a small web application where students and teachers
borrow and return books, and teachers follow the borrowing of the classes
they oversee.

Configuration is read from environment variables, e.g. PORT, DATABASE_PATH,
LIBRARY_STUDENT_QUOTA and AUTH_SESSION_SECRET.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, version)
		},
	}

	root.PersistentFlags().StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the SQLite database file")

	root.AddCommand(
		newServeCommand(cfg, version),
		newSeedCommand(cfg),
		newPasswdCommand(cfg),
	)
	return root
}

func newServeCommand(cfg *config.Config, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, version)
		},
	}
}
