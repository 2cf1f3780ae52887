// Package signup реализует HTTP-обработчик регистрации по username и e-mail.
//
// После регистрации на почту отправляется код подтверждения,
// который затем обменивается на токен в /auth/token.
package signup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// Request входные данные регистрации.
type Request struct {
	Username string `json:"username" validate:"required,max=150,username" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=254" example:"alice@example.com"`
}

// Response подтверждение регистрации.
type Response struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	RequestSignup(ctx context.Context, username, email string) (*models.User, error)
}

// Handler обрабатывает POST /auth/signup.
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

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью user и отправляет код подтверждения на e-mail.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Имя пользователя и e-mail"
// @Success 200 {object} Response
// @Failure 400 {object} map[string][]string "Ошибка валидации"
// @Failure 409 {object} map[string][]string "Имя или e-mail уже заняты"
// @Failure 500 {object} response.Detail
// @Router /auth/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, h.validate, &req); err != nil {
		log.Info("invalid signup request", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	user, err := h.service.RequestSignup(r.Context(), req.Username, req.Email)
	if err != nil {
		log.Error("signup failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	log.Info("user signed up", slog.String("username", user.Username))
	response.OK(w, r, Response{Username: user.Username, Email: user.Email})
}
