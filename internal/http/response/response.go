// Package response формирует JSON-ответы обработчиков.
//
// Ошибки отдаются в двух формах: {"поле": ["сообщение", ...]} для ошибок,
// привязанных к полям запроса, и {"detail": "сообщение"} для остальных.
// Статус определяется категорией ошибки из пакета apperr.
package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
)

// Detail тело ответа с ошибкой без привязки к полю.
type Detail struct {
	Detail string `json:"detail" example:"Not found."`
}

// List конверт для постраничных списков.
type List struct {
	Count   int `json:"count" example:"1"`
	Results any `json:"results"`
}

// Token тело ответа с выпущенным токеном.
type Token struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

const internalError = "internal server error"

// StatusFor HTTP-статус для ошибки. Неизвестные ошибки дают 500.
func StatusFor(err error) int {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrAuthentication:
		return http.StatusUnauthorized
	case apperr.ErrPermissionDenied:
		return http.StatusForbidden
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error пишет ошибку в ответ. Текст недоменных ошибок клиенту не отдаётся.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	render.Status(r, status)

	var fieldErr *apperr.FieldError
	if errors.As(err, &fieldErr) {
		render.JSON(w, r, fieldErr.Fields)
		return
	}
	var domainErr *apperr.Error
	if status != http.StatusInternalServerError && errors.As(err, &domainErr) {
		render.JSON(w, r, Detail{Detail: domainErr.Detail()})
		return
	}
	render.JSON(w, r, Detail{Detail: internalError})
}

// OK пишет тело с кодом 200.
func OK(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, v)
}

// Created пишет тело с кодом 201.
func Created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

// Page отвечает конвертом списка.
func Page(w http.ResponseWriter, r *http.Request, count int, results any) {
	OK(w, r, List{Count: count, Results: results})
}
