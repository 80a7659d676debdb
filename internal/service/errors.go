package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound запись не найдена. Оборачивается с названием сущности и ID
var ErrNotFound = errors.New("not found")

// ValidationError локальная проверка не прошла, до базы запрос не дошёл
type ValidationError struct {
	Action string
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	msg := e.Action + ": " + e.Reason
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, ", ") + ")"
	}
	return msg
}

func validationError(action, reason string, fields ...string) *ValidationError {
	return &ValidationError{Action: action, Reason: reason, Fields: fields}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// IsValidation проверяет, что ошибка - ошибка валидации
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// requireFields возвращает имена пустых полей
func requireFields(fields ...[2]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}
