package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragflowctl/internal/models"
)

// Имена шагов удаления, в порядке выполнения.
const (
	StepUser       = "user"
	StepTenant     = "tenant"
	StepUserTenant = "user_tenant"
	StepTenantLLM  = "tenant_llm"
)

// TeardownStep удаляет одну группу строк и возвращает число удалённых.
type TeardownStep struct {
	Name string
	Run  func(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

type StepResult struct {
	Name         string
	RowsAffected int64
	Err          error
}

type TeardownReport struct {
	UserID string
	Steps  []StepResult
}

func (r TeardownReport) OK() bool { return len(r.Failed()) == 0 }

func (r TeardownReport) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Err — ошибки всех упавших шагов, nil если все прошли.
func (r TeardownReport) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, s.Err))
	}
	return errors.Join(errs...)
}

// Teardown — удаление всего, что RAGFlow создаёт при регистрации.
// Шаги независимы: упавший шаг не останавливает следующие, транзакции нет.
type Teardown struct {
	db    *gorm.DB
	steps []TeardownStep
}

func NewTeardown(db *gorm.DB) *Teardown {
	return &Teardown{db: db, steps: DefaultTeardownSteps()}
}

// NewTeardownWithSteps — свой набор шагов (тесты, частичная очистка).
func NewTeardownWithSteps(db *gorm.DB, steps []TeardownStep) *Teardown {
	return &Teardown{db: db, steps: steps}
}

func (t *Teardown) Steps() []string {
	names := make([]string, len(t.steps))
	for i, s := range t.steps {
		names[i] = s.Name
	}
	return names
}

func (t *Teardown) Run(ctx context.Context, userID string) TeardownReport {
	rep := TeardownReport{UserID: userID, Steps: make([]StepResult, 0, len(t.steps))}
	for _, s := range t.steps {
		n, err := s.Run(ctx, t.db.WithContext(ctx), userID)
		rep.Steps = append(rep.Steps, StepResult{Name: s.Name, RowsAffected: n, Err: err})
	}
	return rep
}

// DefaultTeardownSteps: user → tenant → user_tenant → tenant_llm.
// Из user_tenant уходят все строки тенанта и все членства пользователя
// в чужих тенантах, а не только первая найденная.
func DefaultTeardownSteps() []TeardownStep {
	return []TeardownStep{
		{Name: StepUser, Run: func(_ context.Context, tx *gorm.DB, id string) (int64, error) {
			res := tx.Where("id = ?", id).Delete(&models.User{})
			return res.RowsAffected, res.Error
		}},
		{Name: StepTenant, Run: func(_ context.Context, tx *gorm.DB, id string) (int64, error) {
			res := tx.Where("id = ?", models.TenantIDForUser(id)).Delete(&models.Tenant{})
			return res.RowsAffected, res.Error
		}},
		{Name: StepUserTenant, Run: func(_ context.Context, tx *gorm.DB, id string) (int64, error) {
			res := tx.Where("tenant_id = ? OR user_id = ?", models.TenantIDForUser(id), id).Delete(&models.UserTenant{})
			return res.RowsAffected, res.Error
		}},
		{Name: StepTenantLLM, Run: func(_ context.Context, tx *gorm.DB, id string) (int64, error) {
			res := tx.Where("tenant_id = ?", models.TenantIDForUser(id)).Delete(&models.TenantLLM{})
			return res.RowsAffected, res.Error
		}},
	}
}
