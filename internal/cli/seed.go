package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/database"
)

// SeedCommand loads the initial classes, users and books.
type SeedCommand struct {
	cfg   *config.Config
	Reset bool
}

func newSeedCommand(cfg *config.Config) *cobra.Command {
	sc := &SeedCommand{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the initial classes, users and books",
		Long: `Load the initial classes, users and books into an empty database.

Examples:
  classlib seed                 # Seed only when no users exist
  classlib seed --reset         # Wipe all library data and seed again`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sc.Run(cmd)
		},
	}
	cmd.Flags().BoolVar(&sc.Reset, "reset", false, "Wipe borrow records, books, classes and users before seeding")
	return cmd
}

func (sc *SeedCommand) Run(cmd *cobra.Command) error {
	db, err := database.NewDatabase(sc.cfg.Database.Path, sc.cfg.Database.LogLevel)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if sc.Reset {
		if err := db.Reset(sc.cfg.Auth.BcryptCost); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Fprintf(out, "Database %s reset and seeded\n", sc.cfg.Database.Path)
		return nil
	}

	seeded, err := db.Seed(sc.cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	if !seeded {
		fmt.Fprintf(out, "Database %s already has users, nothing to do (use --reset to start over)\n", sc.cfg.Database.Path)
		return nil
	}
	fmt.Fprintf(out, "Database %s seeded\n", sc.cfg.Database.Path)
	return nil
}
