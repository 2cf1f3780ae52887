// Package apperr описывает таксономию ошибок приложения.
//
// Каждая доменная ошибка разворачивается (errors.Unwrap) в одну из базовых
// категорий: ErrValidation, ErrAuthentication, ErrPermissionDenied, ErrNotFound,
// ErrConflict. HTTP-слой сопоставляет категорию со статусом ответа,
// а сервисы сравнивают конкретные ошибки через errors.Is.
package apperr

import (
	"errors"
	"maps"
	"slices"
)

// Базовые категории ошибок.
var (
	ErrValidation       = errors.New("validation error")
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)

// Error доменная ошибка с сообщением для клиента.
type Error struct {
	kind error
	msg  string
}

// New создаёт доменную ошибку категории kind.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Detail текст, который можно отдать клиенту.
func (e *Error) Detail() string { return e.msg }

// FieldError ошибка, привязанная к полям запроса: {"score": ["..."]}.
type FieldError struct {
	kind   error
	Fields map[string][]string
}

// Field создаёт ошибку категории kind для одного поля.
func Field(kind error, field, msg string) *FieldError {
	return &FieldError{kind: kind, Fields: map[string][]string{field: {msg}}}
}

// Validation создаёт ошибку валидации по набору полей.
func Validation(fields map[string][]string) *FieldError {
	return &FieldError{kind: ErrValidation, Fields: fields}
}

func (e *FieldError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	msg := e.kind.Error() + ":"
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			msg += " " + k + ": " + m + ";"
		}
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.kind }

// Kind возвращает базовую категорию ошибки или nil, если ошибка не доменная.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrAuthentication, ErrPermissionDenied, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
