// Package users реализует HTTP-обработчики учётных записей:
// администрирование /users и собственный профиль /users/me.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
	userservice "github.com/magabrotheeeer/review-aggregator/internal/services/users"
)

// Service бизнес-логика учётных записей.
type Service interface {
	List(ctx context.Context, caller policy.Caller, search string, page models.Page) ([]*models.User, int, error)
	Get(ctx context.Context, caller policy.Caller, username string) (*models.User, error)
	Create(ctx context.Context, caller policy.Caller, user models.User) (*models.User, error)
	Update(ctx context.Context, caller policy.Caller, username string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, caller policy.Caller, username string) error
	Self(ctx context.Context, caller policy.Caller, op userservice.SelfOp, patch models.UserPatch) (*models.User, error)
}

// CreateRequest тело создания пользователя администратором.
type CreateRequest struct {
	Username  string `json:"username" validate:"required,max=150,username" example:"bob"`
	Email     string `json:"email" validate:"required,email,max=254" example:"bob@example.com"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin" example:"user"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// UpdateRequest частичное обновление пользователя администратором.
type UpdateRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Role      *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
	Bio       *string `json:"bio"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// ProfileRequest изменение собственного профиля. Поля role здесь нет.
type ProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Bio       *string `json:"bio"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// Handler обработчики /users.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Info("user request failed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Err(err))
	response.Error(w, r, err)
}

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "часть username"
// @Param limit query int false "размер страницы"
// @Param offset query int false "смещение"
// @Success 200 {object} response.List{results=[]models.User}
// @Failure 401 {object} response.Detail
// @Failure 403 {object} response.Detail
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.List"
	res, total, err := h.service.List(r.Context(), middlewarectx.CallerFrom(r.Context()),
		r.URL.Query().Get("search"), request.Page(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.Page(w, r, total, res)
}

// Create godoc
// @Summary Создание пользователя
// @Description Пользователь получает код подтверждения сам через /auth/code.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "Пользователь"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.Detail
// @Failure 409 {object} map[string][]string
// @Router /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Create"
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionCreate, policy.KindIdentity); err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req CreateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.service.Create(r.Context(), caller, models.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      policy.Role(req.Role),
		Bio:       req.Bio,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.Created(w, r, user)
}

// Read godoc
// @Summary Пользователь
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param username path string true "username"
// @Success 200 {object} models.User
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /users/{username} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Read"
	user, err := h.service.Get(r.Context(), middlewarectx.CallerFrom(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.OK(w, r, user)
}

// Update godoc
// @Summary Изменение пользователя
// @Description Администратор может менять роль. Username не меняется.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "username"
// @Param request body UpdateRequest true "Изменяемые поля"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /users/{username} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Update"
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindIdentity); err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req UpdateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	patch := models.UserPatch{Email: req.Email, Bio: req.Bio, FirstName: req.FirstName, LastName: req.LastName}
	if req.Role != nil {
		role := policy.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "username"), patch)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.OK(w, r, user)
}

// Delete godoc
// @Summary Удаление пользователя
// @Description Отзывы и комментарии пользователя удаляются вместе с ним.
// @Tags Users
// @Security BearerAuth
// @Param username path string true "username"
// @Success 204
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /users/{username} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Delete"
	if err := h.service.Delete(r.Context(), middlewarectx.CallerFrom(r.Context()), chi.URLParam(r, "username")); err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.NoContent(w, r)
}

// Me godoc
// @Summary Собственный профиль
// @Description GET читает профиль, PUT заменяет его, PATCH меняет отдельные поля. Роль изменить нельзя, DELETE не поддерживается.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest false "Поля профиля"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail
// @Router /users/me [get]
// @Router /users/me [put]
// @Router /users/me [patch]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Me"

	selfOp, err := userservice.ParseSelfOp(r.Method)
	if err != nil {
		w.Header().Set("Allow", "GET, PUT, PATCH")
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, response.Detail{Detail: fmt.Sprintf("Method %q not allowed.", r.Method)})
		return
	}

	caller := middlewarectx.CallerFrom(r.Context())
	if err := policy.Gate(caller, selfOp.Action(), policy.KindSelf); err != nil {
		h.fail(w, r, op, err)
		return
	}

	var patch models.UserPatch
	if selfOp != userservice.SelfRead {
		var req ProfileRequest
		if err := request.Decode(r, h.validate, &req); err != nil {
			response.Error(w, r, err)
			return
		}
		patch = models.UserPatch{Email: req.Email, Bio: req.Bio, FirstName: req.FirstName, LastName: req.LastName}
	}

	user, err := h.service.Self(r.Context(), caller, selfOp, patch)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.OK(w, r, user)
}
