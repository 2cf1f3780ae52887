// Package catalog обработчики справочников /categories и /genres.
// Один Handler обслуживает один справочник.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/http/request"
	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
	catalogservice "github.com/magabrotheeeer/review-aggregator/internal/services/catalog"
)

// Service бизнес-логика справочников.
type Service interface {
	List(ctx context.Context, caller policy.Caller, kind models.CatalogKind, search string) ([]models.CatalogItem, error)
	Create(ctx context.Context, caller policy.Caller, kind models.CatalogKind, item models.CatalogItem) (models.CatalogItem, error)
	Delete(ctx context.Context, caller policy.Caller, kind models.CatalogKind, slug string) error
}

// Request тело создания записи справочника.
type Request struct {
	Name string `json:"name" validate:"required,max=256" example:"Фантастика"`
	Slug string `json:"slug" validate:"required,max=50,slug" example:"sci-fi"`
}

// Handler обработчики одного справочника.
type Handler struct {
	log      *slog.Logger
	service  Service
	kind     models.CatalogKind
	validate *validator.Validate
}

// New создаёт Handler для справочника kind.
func New(log *slog.Logger, service Service, kind models.CatalogKind) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		kind:     kind,
		validate: request.NewValidator(),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Info("catalog request failed",
		slog.String("op", op),
		slog.String("kind", string(h.kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Err(err))
	response.Error(w, r, err)
}

// List godoc
// @Summary Список категорий или жанров
// @Tags Catalog
// @Produce json
// @Param search query string false "часть name"
// @Param limit query int false "размер страницы"
// @Param offset query int false "смещение"
// @Success 200 {object} response.List{results=[]models.CatalogItem}
// @Router /categories [get]
// @Router /genres [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.List"
	items, err := h.service.List(r.Context(), middlewarectx.CallerFrom(r.Context()), h.kind, r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	page := request.Page(r)
	lo := min(page.Offset, len(items))
	hi := min(lo+page.Limit, len(items))
	response.Page(w, r, len(items), items[lo:hi])
}

// Create godoc
// @Summary Добавление категории или жанра
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Запись справочника"
// @Success 201 {object} models.CatalogItem
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.Detail
// @Failure 403 {object} response.Detail
// @Router /categories [post]
// @Router /genres [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.Create"
	caller := middlewarectx.CallerFrom(r.Context())

	// Права проверяются до разбора тела.
	if err := policy.Gate(caller, policy.ActionCreate, catalogservice.ResourceKind(h.kind)); err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req Request
	if err := request.Decode(r, h.validate, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	item, err := h.service.Create(r.Context(), caller, h.kind,
		models.CatalogItem{Name: req.Name, Slug: req.Slug})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.Created(w, r, item)
}

// Delete godoc
// @Summary Удаление категории или жанра
// @Tags Catalog
// @Security BearerAuth
// @Param slug path string true "slug"
// @Success 204
// @Failure 403 {object} response.Detail
// @Failure 404 {object} response.Detail
// @Router /categories/{slug} [delete]
// @Router /genres/{slug} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.Delete"
	if err := h.service.Delete(r.Context(), middlewarectx.CallerFrom(r.Context()), h.kind, chi.URLParam(r, "slug")); err != nil {
		h.fail(w, r, op, err)
		return
	}
	response.NoContent(w, r)
}
