// Package comments реализует HTTP-обработчики комментариев к отзывам.
package comments

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

// Service бизнес-логика комментариев.
type Service interface {
	CreateComment(ctx context.Context, caller policy.Caller, titleID, reviewID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, caller policy.Caller, titleID, reviewID, commentID int64, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, caller policy.Caller, titleID, reviewID, commentID int64) error
	GetComment(ctx context.Context, caller policy.Caller, titleID, reviewID, commentID int64) (*models.Comment, error)
	ListComments(ctx context.Context, caller policy.Caller, titleID, reviewID int64, page models.Page) ([]*models.Comment, int, error)
}

// Request тело нового комментария.
type Request struct {
	Text string `json:"text" validate:"required" example:"Agreed"`
}

// UpdateRequest новый текст комментария. Пустой текст отклоняет сервис
// после проверки владения.
type UpdateRequest struct {
	Text string `json:"text" example:"Agreed"`
}

// Handler обработчики /titles/{title_id}/reviews/{review_id}/comments.
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Info("comment request failed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Err(err))
	response.Error(w, r, err)
}

// List godoc
// @Summary Комментарии к отзыву
// @Tags Comments
// @Produce json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param limit query int false "размер страницы"
// @Param offset query int false "смещение"
// @Success 200 {object} response.List{results=[]models.Comment}
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.List"

	titleID, reviewID, err := parent(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	res, total, err := h.service.ListComments(r.Context(), middlewarectx.CallerFrom(r.Context()),
		titleID, reviewID, request.Page(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.Page(w, r, total, res)
}

// Create godoc
// @Summary Новый комментарий
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body Request true "Комментарий"
// @Success 201 {object} models.Comment
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Create"
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionCreate, policy.KindComment); err != nil {
		h.fail(w, r, op, err)
		return
	}
	titleID, reviewID, err := parent(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req Request
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	comment, err := h.service.CreateComment(r.Context(), caller, titleID, reviewID, req.Text)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.Created(w, r, comment)
}

// Read godoc
// @Summary Комментарий
// @Tags Comments
// @Produce json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 200 {object} models.Comment
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Read"

	titleID, reviewID, commentID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	comment, err := h.service.GetComment(r.Context(), middlewarectx.CallerFrom(r.Context()), titleID, reviewID, commentID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.OK(w, r, comment)
}

// Update godoc
// @Summary Изменение комментария
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Param request body UpdateRequest true "Новый текст"
// @Success 200 {object} models.Comment
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Update"
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindComment); err != nil {
		h.fail(w, r, op, err)
		return
	}
	titleID, reviewID, commentID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req UpdateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	comment, err := h.service.UpdateComment(r.Context(), caller,
		titleID, reviewID, commentID, req.Text)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.OK(w, r, comment)
}

// Delete godoc
// @Summary Удаление комментария
// @Tags Comments
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 204
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Delete"

	titleID, reviewID, commentID, err := ids(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.service.DeleteComment(r.Context(), middlewarectx.CallerFrom(r.Context()),
		titleID, reviewID, commentID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.NoContent(w, r)
}

func parent(r *http.Request) (titleID, reviewID int64, err error) {
	if titleID, err = request.ID(r, "title_id", models.ErrTitleNotFound); err != nil {
		return 0, 0, err
	}
	if reviewID, err = request.ID(r, "review_id", models.ErrReviewNotFound); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

func ids(r *http.Request) (titleID, reviewID, commentID int64, err error) {
	if titleID, reviewID, err = parent(r); err != nil {
		return 0, 0, 0, err
	}
	if commentID, err = request.ID(r, "comment_id", models.ErrCommentNotFound); err != nil {
		return 0, 0, 0, err
	}
	return titleID, reviewID, commentID, nil
}
