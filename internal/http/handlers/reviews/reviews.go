// Package reviews реализует HTTP-обработчики отзывов на произведения.
package reviews

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// Service бизнес-логика отзывов.
type Service interface {
	CreateReview(ctx context.Context, caller policy.Caller, titleID int64, text string, score int) (*models.Review, error)
	UpdateReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64, text *string, score *int) (*models.Review, error)
	DeleteReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64) error
	GetReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64) (*models.Review, error)
	ListReviews(ctx context.Context, caller policy.Caller, titleID int64, page models.Page) ([]*models.Review, int, error)
}

// CreateRequest тело нового отзыва. Диапазон оценки проверяет сервис.
type CreateRequest struct {
	Text  string `json:"text" validate:"required" example:"Great book"`
	Score *int   `json:"score" validate:"required" example:"9"`
}

// UpdateRequest изменяемые поля отзыва. Значения проверяет сервис
// после проверки владения.
type UpdateRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// Handler обработчики /titles/{title_id}/reviews.
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

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Отзывы на произведение
// @Tags Reviews
// @Produce json
// @Param title_id path int true "ID произведения"
// @Param limit query int false "размер страницы"
// @Param offset query int false "смещение"
// @Success 200 {object} response.List{results=[]models.Review}
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.List"

	titleID, err := request.ID(r, "title_id", models.ErrTitleNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	res, total, err := h.service.ListReviews(r.Context(), middlewarectx.CallerFrom(r.Context()), titleID, request.Page(r))
	if err != nil {
		h.logger(r, op).Info("failed to list reviews", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.Page(w, r, total, res)
}

// Create godoc
// @Summary Новый отзыв
// @Description Один пользователь может оставить только один отзыв на произведение.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param request body CreateRequest true "Отзыв"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Failure 409 {object} response.Detail "Отзыв уже существует"
// @Router /titles/{title_id}/reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Create"
	log := h.logger(r, op)
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionCreate, policy.KindReview); err != nil {
		response.Error(w, r, err)
		return
	}
	titleID, err := request.ID(r, "title_id", models.ErrTitleNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req CreateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), caller, titleID, req.Text, *req.Score)
	if err != nil {
		log.Info("failed to create review", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, review)
}

// Read godoc
// @Summary Отзыв
// @Tags Reviews
// @Produce json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 200 {object} models.Review
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Read"

	titleID, reviewID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	review, err := h.service.GetReview(r.Context(), middlewarectx.CallerFrom(r.Context()), titleID, reviewID)
	if err != nil {
		h.logger(r, op).Info("failed to read review", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, review)
}

// Update godoc
// @Summary Изменение отзыва
// @Description Доступно автору, модератору и администратору.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body UpdateRequest true "Изменяемые поля"
// @Success 200 {object} models.Review
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Update"
	log := h.logger(r, op)
	caller := middlewarectx.CallerFrom(r.Context())

	// Автор известен только после загрузки отзыва: здесь отсекается аноним,
	// владение и значения полей проверяет сервис.
	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindReview); err != nil {
		response.Error(w, r, err)
		return
	}
	titleID, reviewID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req UpdateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), caller,
		titleID, reviewID, req.Text, req.Score)
	if err != nil {
		log.Info("failed to update review", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, review)
}

// Delete godoc
// @Summary Удаление отзыва
// @Description Доступно автору, модератору и администратору.
// @Tags Reviews
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 204
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Delete"

	titleID, reviewID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.service.DeleteReview(r.Context(), middlewarectx.CallerFrom(r.Context()), titleID, reviewID); err != nil {
		h.logger(r, op).Info("failed to delete review", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func ids(r *http.Request) (titleID, reviewID int64, err error) {
	if titleID, err = request.ID(r, "title_id", models.ErrTitleNotFound); err != nil {
		return 0, 0, err
	}
	if reviewID, err = request.ID(r, "review_id", models.ErrReviewNotFound); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}
