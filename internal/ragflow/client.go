// Package ragflow — клиент HTTP API RAGFlow (/api/v1).
//
// Каждый метод — ровно один вызов API; параметры передаются как есть,
// пагинация не агрегируется. Ответы RAGFlow всегда завернуты в
// {"code": 0, "message": "", "data": ...}; code != 0 возвращается как *APIError.
package ragflow

import (
	"errors"
	"net/http"
	"strings"
	"time"
)


const apiPrefix = "/api/v1"

// Client — клиент API RAGFlow с bearer-токеном.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (транспорт с логированием, тесты).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout задаёт таймаут дефолтного http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// NewClient требует и адрес, и токен.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ragflow: base URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ragflow: API key is required")
	}
	c := &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}
