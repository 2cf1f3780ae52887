// Package titles реализует HTTP-обработчики произведений.
//
// Чтение доступно всем, изменение только администратору.
// Рейтинг в ответах вычисляется при каждом запросе.
package titles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// Service бизнес-логика произведений.
type Service interface {
	CreateTitle(ctx context.Context, caller policy.Caller, in models.TitleInput) (*models.Title, error)
	UpdateTitle(ctx context.Context, caller policy.Caller, id int64, patch models.TitlePatch) (*models.Title, error)
	DeleteTitle(ctx context.Context, caller policy.Caller, id int64) error
	GetTitle(ctx context.Context, caller policy.Caller, id int64) (*models.Title, error)
	ListTitles(ctx context.Context, caller policy.Caller, filter models.TitleFilter, page models.Page) ([]*models.Title, int, error)
}

// CreateRequest тело создания произведения.
type CreateRequest struct {
	Name     string   `json:"name" validate:"required,max=256" example:"Solaris"`
	Year     int      `json:"year" validate:"required" example:"1961"`
	Category string   `json:"category" validate:"required,slug,max=50" example:"books"`
	Genre    []string `json:"genre" validate:"required,dive,slug,max=50" example:"sci-fi"`
}

// UpdateRequest тело частичного обновления. Отсутствующие поля не меняются.
type UpdateRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=256"`
	Year     *int      `json:"year"`
	Category *string   `json:"category" validate:"omitempty,max=50"`
	Genre    *[]string `json:"genre" validate:"omitempty,dive,slug,max=50"`
}

func (u UpdateRequest) patch() models.TitlePatch {
	p := models.TitlePatch{Name: u.Name, Year: u.Year, CategorySlug: u.Category}
	if u.Genre != nil {
		p.GenreSlugs = append([]string{}, *u.Genre...)
	}
	return p
}

// Handler обработчики /titles.
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
// @Summary Список произведений
// @Tags Titles
// @Produce json
// @Param category query string false "slug категории"
// @Param genre query string false "slug жанра"
// @Param name query string false "часть названия"
// @Param year query int false "год выпуска"
// @Param limit query int false "размер страницы"
// @Param offset query int false "смещение"
// @Success 200 {object} response.List{results=[]models.Title}
// @Router /titles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.List"
	log := h.logger(r, op)

	q := r.URL.Query()
	filter := models.TitleFilter{
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		Name:     q.Get("name"),
	}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = year
	}

	res, total, err := h.service.ListTitles(r.Context(), middlewarectx.CallerFrom(r.Context()), filter, request.Page(r))
	if err != nil {
		log.Error("failed to list titles", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.Page(w, r, total, res)
}

// Create godoc
// @Summary Создание произведения
// @Tags Titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "Произведение"
// @Success 201 {object} models.Title
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail
// @Failure 403 {object} response.Detail
// @Router /titles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Create"
	log := h.logger(r, op)
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionCreate, policy.KindTitle); err != nil {
		response.Error(w, r, err)
		return
	}
	var req CreateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	title, err := h.service.CreateTitle(r.Context(), caller, models.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		log.Info("failed to create title", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, title)
}

// Read godoc
// @Summary Произведение
// @Tags Titles
// @Produce json
// @Param title_id path int true "ID произведения"
// @Success 200 {object} models.Title
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Read"

	id, err := request.ID(r, "title_id", models.ErrTitleNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	title, err := h.service.GetTitle(r.Context(), middlewarectx.CallerFrom(r.Context()), id)
	if err != nil {
		h.logger(r, op).Info("failed to read title", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, title)
}

// Update godoc
// @Summary Частичное обновление произведения
// @Tags Titles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param request body UpdateRequest true "Изменяемые поля"
// @Success 200 {object} models.Title
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Update"
	log := h.logger(r, op)
	caller := middlewarectx.CallerFrom(r.Context())

	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindTitle); err != nil {
		response.Error(w, r, err)
		return
	}
	id, err := request.ID(r, "title_id", models.ErrTitleNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req UpdateRequest
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	title, err := h.service.UpdateTitle(r.Context(), caller, id, req.patch())
	if err != nil {
		log.Info("failed to update title", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, title)
}

// Delete godoc
// @Summary Удаление произведения
// @Tags Titles
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Success 204
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /titles/{title_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Delete"

	id, err := request.ID(r, "title_id", models.ErrTitleNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.service.DeleteTitle(r.Context(), middlewarectx.CallerFrom(r.Context()), id); err != nil {
		h.logger(r, op).Info("failed to delete title", sl.Err(err))
		response.Error(w, r, err)
		return
	}
	response.NoContent(w, r)
}
