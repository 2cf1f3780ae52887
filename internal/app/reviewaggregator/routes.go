// Package reviewaggregator собирает HTTP-приложение сервиса отзывов:
// зависимости, таблицу маршрутов и жизненный цикл серверов.
package reviewaggregator

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/auth/code"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/auth/token"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/catalog"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/comments"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/reviews"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/titles"
	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/users"
	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// AuthService выдача учётных данных и проверка токенов.
type AuthService interface {
	signup.Service
	code.Service
	token.Service
	middlewarectx.Authenticator
}

// ContentService произведения, отзывы и комментарии.
type ContentService interface {
	titles.Service
	reviews.Service
	comments.Service
}

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Auth    AuthService
	Content ContentService
	Users   users.Service
	Catalog catalog.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, limits config.RateLimit) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
		middlewarectx.JWTMiddleware(svc.Auth, logger),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !limits.Disabled {
				r.Use(middlewarectx.RateLimitMiddleware(middlewarectx.NewRateLimiter(limits), logger))
			}
			r.Post("/signup", signup.New(logger, svc.Auth).ServeHTTP)
			r.Post("/code", code.New(logger, svc.Auth).ServeHTTP)
			r.Post("/token", token.New(logger, svc.Auth).ServeHTTP)
		})

		th := titles.New(logger, svc.Content)
		rh := reviews.New(logger, svc.Content)
		ch := comments.New(logger, svc.Content)
		r.Route("/titles", func(r chi.Router) {
			r.Get("/", th.List)
			r.Post("/", th.Create)
			r.Route("/{title_id}", func(r chi.Router) {
				r.Get("/", th.Read)
				r.Patch("/", th.Update)
				r.Delete("/", th.Delete)

				r.Route("/reviews", func(r chi.Router) {
					r.Get("/", rh.List)
					r.Post("/", rh.Create)
					r.Route("/{review_id}", func(r chi.Router) {
						r.Get("/", rh.Read)
						r.Patch("/", rh.Update)
						r.Delete("/", rh.Delete)

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", ch.List)
							r.Post("/", ch.Create)
							r.Get("/{comment_id}", ch.Read)
							r.Patch("/{comment_id}", ch.Update)
							r.Delete("/{comment_id}", ch.Delete)
						})
					})
				})
			})
		})

		for _, kind := range []models.CatalogKind{models.CatalogCategories, models.CatalogGenres} {
			h := catalog.New(logger, svc.Catalog, kind)
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Delete("/{slug}", h.Delete)
			})
		}

		uh := users.New(logger, svc.Users)
		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.List)
			r.Post("/", uh.Create)
			// Все методы: неподдерживаемые получают 405 от обработчика.
			r.HandleFunc("/me", uh.Me)
			r.Get("/{username}", uh.Read)
			r.Patch("/{username}", uh.Update)
			r.Delete("/{username}", uh.Delete)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
