package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"
)

// Probe — liveness: GET url с коротким таймаутом, живым считается только 200.
func Probe(ctx context.Context, client *http.Client, url string, timeout time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// StatusError — сервер ответил, но не 200.
type StatusError struct{ Code int }

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// DefaultPingTimeout — сколько ждать ответа БД в PingDB у вызывающих.
const DefaultPingTimeout = 3 * time.Second

// PingDB — readiness базы под gorm.
func PingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("db not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db handle error: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db unreachable: %w", err)
	}
	return nil
}
