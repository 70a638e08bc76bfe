package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/database"
)

// PasswdCommand sets a user's password without knowing the old one.
type PasswdCommand struct {
	cfg      *config.Config
	Password string
}

func newPasswdCommand(cfg *config.Config) *cobra.Command {
	pc := &PasswdCommand{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "passwd <uid>",
		Short: "Set the password of a user",
		Long: `Set the password of a user by login id, e.g. after a forgotten password.

Examples:
  classlib passwd S001 --password new-secret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return pc.Run(cmd, args[0])
		},
	}
	cmd.Flags().StringVarP(&pc.Password, "password", "p", "", "New password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (pc *PasswdCommand) Run(cmd *cobra.Command, uid string) error {
	db, err := database.NewDatabase(pc.cfg.Database.Path, pc.cfg.Database.LogLevel)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := auth.NewService(db.DB, pc.cfg.Auth).SetPassword(uid, pc.Password); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("no user with id %s", uid)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", uid)
	return nil
}
