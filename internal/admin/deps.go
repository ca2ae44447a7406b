// Package admin — консольное администрирование пользователей RAGFlow:
// регистрация через HTTP, просмотр и удаление напрямую в БД.
package admin

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ragflowctl/internal/models"
	"ragflowctl/internal/registration"
	"ragflowctl/internal/repo"
)

var (
	ErrNoDatabase = errors.New("database is not configured")
	ErrCancelled  = errors.New("operation cancelled")
	// ErrIncomplete — после удаления строки пользователя или тенанта остались.
	ErrIncomplete = errors.New("deletion may be incomplete")
)

// Store — чтение пользователей (repo.UserStore).
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	Details(ctx context.Context, id string) (*repo.UserDetails, error)
	Exists(ctx context.Context, id string) (user, tenant bool, err error)
}

// Teardown — удаление строк пользователя (repo.Teardown).
type Teardown interface {
	Run(ctx context.Context, id string) repo.TeardownReport
}

// Registrar — регистрация через веб-API (registration.Registrar).
type Registrar interface {
	Host() string
	CheckServer(ctx context.Context) error
	Register(ctx context.Context, nickname, email, password string) (*registration.Result, error)
}

type Deps struct {
	Store     Store     // nil — БД не настроена
	Teardown  Teardown  // nil — БД не настроена
	Registrar Registrar // обязателен
	Log       *logrus.Logger

	In  io.Reader // ввод подтверждений и меню; по умолчанию os.Stdin
	Out io.Writer // по умолчанию os.Stdout

	Now       func() time.Time
	NewSuffix func() string // суффикс тестового пользователя
	WorkDir   string        // куда пишется ragflow_user_<suffix>.json
}

type Admin struct {
	d  Deps
	in *bufio.Reader
}

func New(d Deps) *Admin {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewSuffix == nil {
		d.NewSuffix = func() string { return uuid.NewString()[:8] }
	}
	if d.WorkDir == "" {
		d.WorkDir = "."
	}
	return &Admin{d: d, in: bufio.NewReader(d.In)}
}

func (a *Admin) hasDB() bool { return a.d.Store != nil && a.d.Teardown != nil }
