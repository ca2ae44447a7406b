package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ragflowctl/internal/models"
	"ragflowctl/internal/ragflowtest"
)

func count(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestTeardownRemovesEverything(t *testing.T) {
	db := ragflowtest.OpenDB(t)
	seed(t, db, "u1", "alice", 1000)
	seed(t, db, "u2", "bob", 2000)

	td := NewTeardown(db)
	assert.Equal(t, []string{StepUser, StepTenant, StepUserTenant, StepTenantLLM}, td.Steps())

	rep := td.Run(context.Background(), "u1")
	require.True(t, rep.OK())
	require.NoError(t, rep.Err())

	got := map[string]int64{}
	for _, s := range rep.Steps {
		got[s.Name] = s.RowsAffected
	}
	assert.Equal(t, map[string]int64{StepUser: 1, StepTenant: 1, StepUserTenant: 2, StepTenantLLM: 2}, got)

	user, tenant, err := NewUserStore(db).Exists(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, user)
	assert.False(t, tenant)
	assert.Zero(t, count(t, db, &models.UserTenant{}, "user_id = ? OR tenant_id = ?", "u1", "u1"))
	assert.Zero(t, count(t, db, &models.TenantLLM{}, "tenant_id = ?", "u1"))

	// чужие данные не тронуты
	assert.EqualValues(t, 1, count(t, db, &models.User{}, "id = ?", "u2"))
	assert.EqualValues(t, 2, count(t, db, &models.UserTenant{}, "user_id = ?", "u2"))
	assert.EqualValues(t, 2, count(t, db, &models.TenantLLM{}, "tenant_id = ?", "u2"))
}

func TestTeardownMissingUserIsNotAnError(t *testing.T) {
	rep := NewTeardown(ragflowtest.OpenDB(t)).Run(context.Background(), "ghost")
	require.True(t, rep.OK())
	for _, s := range rep.Steps {
		assert.Zero(t, s.RowsAffected, s.Name)
	}
}

func TestTeardownContinuesAfterFailedStep(t *testing.T) {
	db := ragflowtest.OpenDB(t)
	seed(t, db, "u1", "alice", 1000)
	require.NoError(t, db.Migrator().DropTable(&models.UserTenant{}))

	rep := NewTeardown(db).Run(context.Background(), "u1")
	require.False(t, rep.OK())
	require.Len(t, rep.Steps, 4)

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StepUserTenant, failed[0].Name)
	assert.ErrorContains(t, rep.Err(), StepUserTenant)

	// остальные три шага отработали
	assert.Zero(t, count(t, db, &models.User{}, "id = ?", "u1"))
	assert.Zero(t, count(t, db, &models.Tenant{}, "id = ?", "u1"))
	assert.Zero(t, count(t, db, &models.TenantLLM{}, "tenant_id = ?", "u1"))
}

func TestTeardownCustomSteps(t *testing.T) {
	boom := errors.New("boom")
	var order []string
	steps := []TeardownStep{
		{Name: "a", Run: func(context.Context, *gorm.DB, string) (int64, error) { order = append(order, "a"); return 0, boom }},
		{Name: "b", Run: func(context.Context, *gorm.DB, string) (int64, error) { order = append(order, "b"); return 3, nil }},
	}

	rep := NewTeardownWithSteps(ragflowtest.OpenDB(t), steps).Run(context.Background(), "x")
	assert.Equal(t, []string{"a", "b"}, order)
	assert.ErrorIs(t, rep.Err(), boom)
	assert.EqualValues(t, 3, rep.Steps[1].RowsAffected)
}
