package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"ragflowctl/app"
	"ragflowctl/internal/admin"
)

func newListCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.RequireDB(cmd.Context()); err != nil {
				return err
			}
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			_, err = ad.ListUsers(cmd.Context())
			return err
		},
	}
}

func newInfoCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "info <user-id>",
		Short: "Show user details with tenant and resource counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.RequireDB(cmd.Context()); err != nil {
				return err
			}
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			_, err = ad.UserDetails(cmd.Context(), args[0])
			return err
		},
	}
}

func newDeleteCommand(a *app.App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user and everything registration created for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.RequireDB(cmd.Context()); err != nil {
				return err
			}
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			_, err = ad.DeleteUser(cmd.Context(), args[0], !yes)
			if errors.Is(err, admin.ErrCancelled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the DELETE confirmation")
	return cmd
}
