// Package models содержит доменные структуры сервиса отзывов:
// пользователей, произведения, отзывы, комментарии и справочники,
// а также ошибки предметной области.
package models

import (
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// User учётная запись. Username неизменяем после создания.
type User struct {
	UID       string      `json:"-"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      policy.Role `json:"role"`
	Bio       string      `json:"bio"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// Confirmation ожидающий код подтверждения: хеш и срок действия.
// Hash пустой, если кода нет или он уже использован.
type Confirmation struct {
	Hash      string
	ExpiresAt time.Time
}

// Expired истёк ли код к моменту now. Код без срока считается истёкшим.
func (c Confirmation) Expired(now time.Time) bool {
	return c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt)
}

// UserPatch частичное обновление профиля: nil означает «не менять».
// Role заполняется только администратором.
type UserPatch struct {
	Email     *string
	Role      *policy.Role
	Bio       *string
	FirstName *string
	LastName  *string
}

// ConfirmationMessage сообщение с кодом подтверждения для воркера-отправителя.
type ConfirmationMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Code     string `json:"code"`
}
