package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ragflowctl/internal/registration"
)

// Параметры тестового пользователя.
const (
	TestPassword       = "Test123456"
	testNicknamePrefix = "TestUser_"
)

// TestUserFile — имя файла с результатом создания тестового пользователя.
func TestUserFile(suffix string) string { return "ragflow_user_" + suffix + ".json" }

// CheckServer печатает состояние RAGFlow.
func (a *Admin) CheckServer(ctx context.Context) error {
	host := a.d.Registrar.Host()
	if err := a.d.Registrar.CheckServer(ctx); err != nil {
		fmt.Fprintf(a.d.Out, "RAGFlow server %s is unavailable: %v\n", host, err)
		return err
	}
	fmt.Fprintf(a.d.Out, "RAGFlow server %s is up\n", host)
	return nil
}

// Register регистрирует пользователя и выпускает API-токен.
func (a *Admin) Register(ctx context.Context, nickname, email, password string) (*registration.Result, error) {
	fmt.Fprintf(a.d.Out, "registering %s (%s) on %s\n", nickname, email, a.d.Registrar.Host())
	res, err := a.d.Registrar.Register(ctx, nickname, email, password)
	if err != nil {
		fmt.Fprintf(a.d.Out, "registration failed: %v\n", err)
		return nil, err
	}
	fmt.Fprintf(a.d.Out, "user registered: %s (id %s)\n", res.User.Nickname, res.User.ID)
	if !res.Success {
		fmt.Fprintln(a.d.Out, res.Message)
		return res, nil
	}
	fmt.Fprintf(a.d.Out, "API token: %s\n", res.APIToken)
	return res, nil
}

// CreateTestUser создаёт TestUser_<suffix> и сохраняет результат в
// WorkDir/ragflow_user_<suffix>.json. Пустой suffix генерируется.
func (a *Admin) CreateTestUser(ctx context.Context, suffix string) (*registration.Result, error) {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		suffix = a.d.NewSuffix()
	}
	nickname := testNicknamePrefix + suffix
	email := "user_" + suffix + "@example.com"

	fmt.Fprintln(a.d.Out, "creating test user:")
	fmt.Fprintf(a.d.Out, "  nickname: %s\n", nickname)
	fmt.Fprintf(a.d.Out, "  email:    %s\n", email)
	fmt.Fprintf(a.d.Out, "  password: %s\n", TestPassword)
	fmt.Fprintln(a.d.Out, strings.Repeat("-", 50))

	res, err := a.Register(ctx, nickname, email, TestPassword)
	if err != nil || !res.Success {
		return res, err
	}

	fmt.Fprintln(a.d.Out, "\ntest user created:")
	fmt.Fprintf(a.d.Out, "  user id:   %s\n", res.User.ID)
	fmt.Fprintf(a.d.Out, "  tenant id: %s\n", res.TenantID)

	path := filepath.Join(a.d.WorkDir, TestUserFile(suffix))
	if err := writeResult(path, res); err != nil {
		a.d.Log.WithError(err).WithField("path", path).Error("save test user failed")
		fmt.Fprintf(a.d.Out, "failed to save %s: %v\n", path, err)
		return res, err
	}
	fmt.Fprintf(a.d.Out, "  saved to:  %s\n", path)
	return res, nil
}

func writeResult(path string, res *registration.Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o600)
}
