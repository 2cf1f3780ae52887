// Package policy решает, может ли вызывающий выполнить действие над ресурсом.
//
// Решение принимается чистой функцией Authorize по фиксированной таблице
// правил: первое подходящее правило определяет исход, если ни одно
// не подошло, действие запрещено.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
)

// Role уровень привилегий пользователя.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ErrUnknownRole неизвестное значение роли.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole разбирает строковое представление роли без учёта регистра.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleModerator, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// IsStaff модератор или администратор.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Action действие над ресурсом.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ReadOnly действие не изменяет состояние.
func (a Action) ReadOnly() bool {
	return a == ActionList || a == ActionRetrieve
}

// Kind тип ресурса.
type Kind int

const (
	KindTitle Kind = iota
	KindCategory
	KindGenre
	KindReview
	KindComment
	// KindIdentity учётные записи других пользователей (/users).
	KindIdentity
	// KindSelf собственная учётная запись вызывающего (/users/me).
	KindSelf
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindCategory:
		return "category"
	case KindGenre:
		return "genre"
	case KindReview:
		return "review"
	case KindComment:
		return "comment"
	case KindIdentity:
		return "identity"
	case KindSelf:
		return "self"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) content() bool {
	return k <= KindComment
}

// Caller субъект запроса. Для анонимного вызова Authenticated == false,
// остальные поля пустые.
type Caller struct {
	ID            string
	Username      string
	Role          Role
	Authenticated bool
}

// Anonymous вызывающий без токена.
var Anonymous = Caller{}

// Resource описание ресурса. AuthorID заполняется для отзывов и комментариев.
type Resource struct {
	Kind     Kind
	AuthorID string
}

// Decision результат проверки.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Ошибки отказа. ErrNotAuthenticated отображается в 401, ErrPermissionDenied в 403.
var (
	ErrNotAuthenticated = apperr.New(apperr.ErrAuthentication, "Authentication credentials were not provided.")
	ErrPermissionDenied = apperr.New(apperr.ErrPermissionDenied, "You do not have permission to perform this action.")
)

// Authorize применяет правила по порядку.
func Authorize(c Caller, a Action, r Resource) Decision {
	switch {
	// Анониму доступно только чтение.
	case !c.Authenticated && !a.ReadOnly():
		return Deny
	// Чтение контента открыто всем.
	case a.ReadOnly() && r.Kind.content():
		return Allow
	// Каталог и произведения меняет только администратор.
	case r.Kind == KindTitle || r.Kind == KindCategory || r.Kind == KindGenre:
		return allowIf(c.Role == RoleAdmin)
	// Отзыв или комментарий правит автор либо модерация.
	case (r.Kind == KindReview || r.Kind == KindComment) && (a == ActionUpdate || a == ActionDelete):
		return allowIf(c.Role.IsStaff() || (r.AuthorID != "" && r.AuthorID == c.ID))
	case (r.Kind == KindReview || r.Kind == KindComment) && a == ActionCreate:
		return allowIf(c.Authenticated)
	case r.Kind == KindIdentity:
		return allowIf(c.Authenticated && c.Role == RoleAdmin)
	case r.Kind == KindSelf:
		return allowIf(c.Authenticated && (a == ActionRetrieve || a == ActionUpdate))
	}
	return Deny
}

func allowIf(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}

// Gate проверка до загрузки ресурса: отсекает анонимные изменения
// и запросы к ресурсам, не требующим владельца. Для отзывов и комментариев
// на Update/Delete решение откладывается до Enforce с известным автором.
func Gate(c Caller, a Action, k Kind) error {
	if !c.Authenticated && (!a.ReadOnly() || !k.content()) {
		return ErrNotAuthenticated
	}
	if (k == KindReview || k == KindComment) && (a == ActionUpdate || a == ActionDelete) {
		return nil
	}
	return Enforce(c, a, Resource{Kind: k})
}

// Enforce переводит решение Authorize в ошибку.
func Enforce(c Caller, a Action, r Resource) error {
	if Authorize(c, a, r) == Allow {
		return nil
	}
	if !c.Authenticated {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}
