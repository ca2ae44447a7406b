package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ragflowctl/app"
	"ragflowctl/internal/health"
	"ragflowctl/internal/registration"
)

// errPartial — пользователь создан, токен нет.
var errPartial = errors.New(registration.MessageTokenFailed)

func checkResult(res *registration.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Success {
		return errPartial
	}
	return nil
}

func newCreateCommand(a *app.App) *cobra.Command {
	var nickname, email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user and issue an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			return checkResult(ad.Register(cmd.Context(), nickname, email, password))
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "user nickname")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&password, "password", "", "user password")
	for _, name := range []string{"nickname", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTestCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "test [suffix]",
		Short: "Create TestUser_<suffix> and save the result to ragflow_user_<suffix>.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			var suffix string
			if len(args) == 1 {
				suffix = args[0]
			}
			return checkResult(ad.CreateTestUser(cmd.Context(), suffix))
		},
	}
}

func newStatusCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the RAGFlow server and its database are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			serverErr := ad.CheckServer(cmd.Context())
			printDBStatus(cmd, a)
			return serverErr
		},
	}
}

// printDBStatus: недоступная БД не ошибка status, только строка вывода.
func printDBStatus(cmd *cobra.Command, a *app.App) {
	ctx, cancel := context.WithTimeout(cmd.Context(), health.DefaultPingTimeout)
	defer cancel()
	if err := a.RequireDB(ctx); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "database unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "database is up")
}
