package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ragflowctl/config"
	"ragflowctl/internal/admin"
	"ragflowctl/internal/credential"
	"ragflowctl/internal/db"
	"ragflowctl/internal/health"
	"ragflowctl/internal/logs"
	"ragflowctl/internal/middleware"
	"ragflowctl/internal/registration"
	"ragflowctl/internal/repo"
	"ragflowctl/internal/sdkclient"
)

// Options — то, что приходит от командной строки, а не из конфига.
type Options struct {
	In        io.Reader
	Out       io.Writer
	LogOutput io.Writer // по умолчанию os.Stderr
	DB        *gorm.DB  // готовое подключение (тесты); иначе открывается по конфигу
	// OpenDB открывает подключение, которое закрывает Close; по умолчанию db.Open.
	OpenDB func(driver, dsn string, log *logrus.Logger) (*gorm.DB, error)
}

type App struct {
	cfg  *config.Config
	opts Options
	Log  *logrus.Logger

	db     *gorm.DB
	dbErr  error
	ownsDB bool

	admin *admin.Admin
	sdk   *sdkclient.Client
}

func (a *App) Initialize(cfg *config.Config, opts Options) error {
	a.cfg = cfg
	a.opts = opts

	/* 1) Логи */
	log, err := logs.New(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: opts.LogOutput,
	})
	if err != nil {
		return err
	}
	a.Log = log

	/* 2) DB (не обязательна: регистрация работает и без неё) */
	if opts.DB != nil {
		a.db = opts.DB
		return nil
	}
	dsn, err := db.DSN(cfg.Database)
	if err != nil {
		a.dbErr = err
		return nil
	}
	open := opts.OpenDB
	if open == nil {
		open = db.Open
	}
	d, err := open(cfg.Database.Driver, dsn, a.Log)
	if err != nil {
		a.Log.WithError(err).WithField("driver", cfg.Database.Driver).Warn("database unavailable, user listing and deletion are disabled")
		a.dbErr = err
		return nil
	}
	a.db = d
	a.ownsDB = true
	return nil
}

func (a *App) httpClient() *http.Client {
	return &http.Client{
		Timeout:   a.cfg.RAGFlow.Timeout,
		Transport: middleware.NewTransport(nil, a.Log),
	}
}

// Admin собирается лениво. Без публичного ключа админки нет.
func (a *App) Admin() (*admin.Admin, error) {
	if a.admin != nil {
		return a.admin, nil
	}
	enc, err := credential.LoadEncryptor(a.cfg.RAGFlow.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("public key %s: %w", a.cfg.RAGFlow.PublicKey, err)
	}
	reg := registration.New(a.cfg.RAGFlow.Host, enc, a.Log,
		registration.WithHTTPClient(a.httpClient()),
		registration.WithProbeTimeout(a.cfg.RAGFlow.ProbeTimeout),
	)

	d := admin.Deps{
		Registrar: reg,
		Log:       a.Log,
		In:        a.opts.In,
		Out:       a.opts.Out,
		WorkDir:   a.cfg.Output.Dir,
	}
	if a.db != nil {
		d.Store = repo.NewUserStore(a.db)
		d.Teardown = repo.NewTeardown(a.db)
	}
	a.admin = admin.New(d)
	return a.admin, nil
}

// SDK — клиент публичного API; нужен ragflow.api_token.
func (a *App) SDK() (*sdkclient.Client, error) {
	if a.sdk != nil {
		return a.sdk, nil
	}
	c, err := sdkclient.New(sdkclient.Config{
		BaseURL:  a.cfg.RAGFlow.Host,
		APIToken: a.cfg.RAGFlow.APIToken,
		Timeout:  a.cfg.RAGFlow.Timeout,
	}, a.Log)
	if err != nil {
		return nil, fmt.Errorf("ragflow client: %w", err)
	}
	a.sdk = c
	return c, nil
}

// RequireDB — для команд, работающих с таблицами напрямую.
func (a *App) RequireDB(ctx context.Context) error {
	if a.db == nil {
		if a.dbErr != nil {
			return errors.Join(admin.ErrNoDatabase, a.dbErr)
		}
		return admin.ErrNoDatabase
	}
	return health.PingDB(ctx, a.db)
}

// Close закрывает только своё подключение; повторный вызов ничего не делает.
func (a *App) Close() error {
	if !a.ownsDB {
		return nil
	}
	a.ownsDB = false
	return db.Close(a.db)
}
