// Package code реализует повторную отправку кода подтверждения.
package code

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
)

// Request пара username и e-mail существующего пользователя.
type Request struct {
	Username string `json:"username" validate:"required,max=150,username" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=254" example:"alice@example.com"`
}

// Service описывает выпуск нового кода.
type Service interface {
	ResendCode(ctx context.Context, username, email string) error
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Новый код подтверждения
// @Description Выпускает новый код для существующего пользователя, предыдущий перестаёт действовать.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Имя пользователя и e-mail"
// @Success 200 {object} Request
// @Failure 400 {object} map[string][]string
// @Failure 404 {object} response.Detail
// @Router /auth/code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.code"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.service.ResendCode(r.Context(), req.Username, req.Email); err != nil {
		log.Error("failed to resend confirmation code", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, req)
}
