package ragflow

import (
	"errors"
	"fmt"
)

// ErrNotFound — выборка по имени ничего не вернула.
var ErrNotFound = errors.New("ragflow: not found")

// APIError — ответ RAGFlow с code != 0 или не-2xx статус без конверта.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ragflow: code %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ragflow: http %d: %s", e.HTTPStatus, e.Message)
}

// IsAPIError — удобная проверка кода ошибки RAGFlow.
func IsAPIError(err error, code int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}
