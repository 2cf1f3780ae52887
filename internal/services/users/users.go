// Package users администрирование учётных записей и работа с собственным профилем.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// Repository контракт хранилища учётных записей.
type Repository interface {
	CreateUser(ctx context.Context, user models.User, conf models.Confirmation) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, search string, page models.Page) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
}

// SelfOp операция над собственным профилем (/users/me).
// Удаления среди операций нет.
type SelfOp int

const (
	SelfRead SelfOp = iota
	// SelfReplace PUT: незаданные поля профиля очищаются.
	SelfReplace
	// SelfPatch PATCH: меняются только заданные поля.
	SelfPatch
)

// Action действие политики доступа, соответствующее операции.
func (op SelfOp) Action() policy.Action {
	if op == SelfRead {
		return policy.ActionRetrieve
	}
	return policy.ActionUpdate
}

// ErrUnsupportedSelfOp метод не соответствует ни одной операции над профилем.
var ErrUnsupportedSelfOp = errors.New("unsupported operation on own profile")

// ParseSelfOp определяет операцию по HTTP-методу.
func ParseSelfOp(method string) (SelfOp, error) {
	switch method {
	case http.MethodGet:
		return SelfRead, nil
	case http.MethodPut:
		return SelfReplace, nil
	case http.MethodPatch:
		return SelfPatch, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedSelfOp, method)
}

// Service сервис учётных записей.
type Service struct {
	log  *slog.Logger
	repo Repository
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// List страница пользователей, search фильтрует по username.
func (s *Service) List(ctx context.Context, caller policy.Caller, search string, page models.Page) ([]*models.User, int, error) {
	const op = "users.List"
	if err := policy.Gate(caller, policy.ActionList, policy.KindIdentity); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	res, total, err := s.repo.ListUsers(ctx, search, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// Get возвращает пользователя по username. Доступно только администратору.
func (s *Service) Get(ctx context.Context, caller policy.Caller, username string) (*models.User, error) {
	const op = "users.Get"
	if err := policy.Gate(caller, policy.ActionRetrieve, policy.KindIdentity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Create создаёт учётную запись без кода подтверждения.
// Код пользователь получает сам через /auth/code.
func (s *Service) Create(ctx context.Context, caller policy.Caller, user models.User) (*models.User, error) {
	const op = "users.Create"
	if err := policy.Gate(caller, policy.ActionCreate, policy.KindIdentity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if strings.EqualFold(strings.TrimSpace(user.Username), "me") {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidUsername)
	}
	if user.Role == "" {
		user.Role = policy.RoleUser
	}

	created, err := s.repo.CreateUser(ctx, user, models.Confirmation{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user created by admin", sl.Op(op),
		slog.String("username", created.Username), slog.String("role", string(created.Role)),
		slog.String("by", caller.Username))
	return created, nil
}

// Update частично обновляет учётную запись, включая роль. Username не меняется.
func (s *Service) Update(ctx context.Context, caller policy.Caller, username string, patch models.UserPatch) (*models.User, error) {
	const op = "users.Update"
	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindIdentity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.repo.UpdateUser(ctx, username, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Role != nil {
		s.log.Info("user role changed", sl.Op(op), slog.String("username", username),
			slog.String("role", string(*patch.Role)), slog.String("by", caller.Username))
	}
	return u, nil
}

// Delete удаляет учётную запись вместе с её отзывами и комментариями.
func (s *Service) Delete(ctx context.Context, caller policy.Caller, username string) error {
	const op = "users.Delete"
	if err := policy.Gate(caller, policy.ActionDelete, policy.KindIdentity); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deleted", sl.Op(op), slog.String("username", username), slog.String("by", caller.Username))
	return nil
}

// Self выполняет операцию над профилем вызывающего. Роль из patch
// игнорируется: сменить её может только администратор.
func (s *Service) Self(ctx context.Context, caller policy.Caller, selfOp SelfOp, patch models.UserPatch) (*models.User, error) {
	const op = "users.Self"

	if err := policy.Gate(caller, selfOp.Action(), policy.KindSelf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		u   *models.User
		err error
	)
	switch selfOp {
	case SelfRead:
		u, err = s.repo.GetUser(ctx, caller.ID)
	case SelfReplace:
		u, err = s.repo.UpdateUser(ctx, caller.Username, replacement(patch))
	case SelfPatch:
		patch.Role = nil
		u, err = s.repo.UpdateUser(ctx, caller.Username, patch)
	default:
		err = ErrUnsupportedSelfOp
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// replacement превращает PUT в полное обновление: пустые поля профиля очищаются,
// email без значения остаётся прежним, потому что он обязателен.
func replacement(p models.UserPatch) models.UserPatch {
	empty := func(v *string) *string {
		if v != nil {
			return v
		}
		s := ""
		return &s
	}
	return models.UserPatch{
		Email:     p.Email,
		Bio:       empty(p.Bio),
		FirstName: empty(p.FirstName),
		LastName:  empty(p.LastName),
	}
}
