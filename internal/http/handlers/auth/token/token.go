// Package token реализует обмен кода подтверждения на bearer-токен.
package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// errUnknownUser неизвестный username на этой границе даёт 401, а не 404.
var errUnknownUser = apperr.New(apperr.ErrAuthentication, "invalid username or confirmation code")

// Request код подтверждения пользователя.
type Request struct {
	Username         string `json:"username" validate:"required,max=150,username" example:"alice"`
	ConfirmationCode string `json:"confirmation_code" validate:"required" example:"K7MQ2XPA"`
}

// LogValue скрывает код в логах.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", r.Username),
		slog.String("confirmation_code", "[REDACTED]"),
	)
}

// Service описывает обмен кода на токен.
type Service interface {
	ExchangeSecret(ctx context.Context, username, code string) (string, error)
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
// @Summary Получение токена
// @Description Обменивает одноразовый код подтверждения на JWT. Код после обмена больше не действует.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Имя пользователя и код подтверждения"
// @Success 200 {object} response.Token
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail "Неверный, просроченный или использованный код"
// @Router /auth/token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.token"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	log = log.With(slog.Any("request", req))

	tok, err := h.service.ExchangeSecret(r.Context(), req.Username, req.ConfirmationCode)
	if errors.Is(err, models.ErrIdentityNotFound) {
		log.Info("token requested for unknown user")
		response.Error(w, r, errUnknownUser)
		return
	}
	if err != nil {
		log.Warn("token exchange failed", sl.Err(err))
		response.Error(w, r, err)
		return
	}

	log.Info("token issued")
	response.OK(w, r, response.Token{Token: tok})
}
