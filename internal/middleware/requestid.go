package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "reqid"

// RequestIDHeader — заголовок, по которому запрос находится в логах RAGFlow.
const RequestIDHeader = "X-Request-Id"

// WithRequestID кладёт id в контекст; Transport возьмёт его вместо нового.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v := ctx.Value(requestIDKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// requestID берёт id из заголовка, контекста или генерирует новый.
func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	if id := GetRequestID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
