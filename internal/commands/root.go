// Package commands — командная строка ragflowctl.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"ragflowctl/app"
	"ragflowctl/config"
)

// Options — подмены для тестов.
type Options struct {
	// DB — общее подключение, после команды не закрывается.
	DB *gorm.DB
	// OpenDB — вместо db.Open; открытое им закрывается после команды.
	OpenDB func(driver, dsn string, log *logrus.Logger) (*gorm.DB, error)
}

// flagKeys — флаг → ключ конфига.
var flagKeys = map[string]string{
	"config":     "config",
	"host":       "ragflow.host",
	"public-key": "ragflow.public_key",
	"api-token":  "ragflow.api_token",
	"log-level":  "logs.level",
	"db-driver":  "database.driver",
	"db-dsn":     "database.dsn",
}

// NewRootCommand: без подкоманды запускается интерактивное меню.
func NewRootCommand(opts Options) *cobra.Command {
	v := viper.New()
	a := &app.App{}

	cmd := &cobra.Command{
		Use:           "ragflowctl",
		Short:         "Administer RAGFlow users and exercise the RAGFlow API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return a.Initialize(cfg, app.Options{
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
				LogOutput: cmd.ErrOrStderr(),
				DB:        opts.DB,
				OpenDB:    opts.OpenDB,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ad, err := a.Admin()
			if err != nil {
				return err
			}
			return ad.Menu(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to config file (yaml)")
	flags.String("host", "http://localhost:9380", "RAGFlow server address")
	flags.String("public-key", "conf/public.pem", "RSA public key used to encrypt passwords")
	flags.String("api-token", "", "RAGFlow API token (demo)")
	flags.String("log-level", "info", "trace|debug|info|warning|error")
	flags.String("db-driver", "mysql", "database driver: mysql|postgres")
	flags.String("db-dsn", "", "database DSN (overrides database.host/port/user/password/name)")
	if err := bindFlags(v, flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		newListCommand(a),
		newInfoCommand(a),
		newDeleteCommand(a),
		newCreateCommand(a),
		newTestCommand(a),
		newStatusCommand(a),
		newDemoCommand(a),
	)
	closeAfterRun(cmd, a)
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, a)
	}
	return cmd
}

// closeAfterRun закрывает БД после RunE при любом исходе:
// PersistentPostRunE cobra пропускает, если RunE вернул ошибку.
func closeAfterRun(c *cobra.Command, a *app.App) {
	run := c.RunE
	if run == nil {
		return
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		return errors.Join(err, a.Close())
	}
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Execute запускает ragflowctl и возвращает код выхода.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand(Options{})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
