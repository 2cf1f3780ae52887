// Package content управляет произведениями, отзывами и комментариями.
//
// Каждая операция сначала проходит policy.Gate, операции изменения
// отзывов и комментариев дополнительно проверяются через policy.Enforce
// с автором, загруженным из хранилища. Уникальность отзыва обеспечивает
// ограничение базы данных, сервис не делает проверку перед вставкой.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/rating"
)

// Store контракт хранилища контента.
type Store interface {
	CreateTitle(ctx context.Context, in models.TitleInput) (int64, error)
	UpdateTitle(ctx context.Context, id int64, patch models.TitlePatch) error
	DeleteTitle(ctx context.Context, id int64) error
	GetTitle(ctx context.Context, id int64) (*models.Title, error)
	TitleExists(ctx context.Context, id int64) (bool, error)
	ListTitles(ctx context.Context, filter models.TitleFilter, page models.Page) ([]*models.Title, int, error)

	CreateReview(ctx context.Context, review models.Review) (*models.Review, error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListReviews(ctx context.Context, titleID int64, page models.Page) ([]*models.Review, int, error)
	UpdateReview(ctx context.Context, reviewID int64, text *string, score *int) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error

	CreateComment(ctx context.Context, titleID int64, comment models.Comment) (*models.Comment, error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) ([]*models.Comment, int, error)
	UpdateComment(ctx context.Context, commentID int64, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error

	rating.StatsReader
}

// Service сервис контента.
type Service struct {
	log    *slog.Logger
	store  Store
	rating *rating.Aggregator
	now    func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени, по нему проверяется год выпуска.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New создаёт сервис контента.
func New(log *slog.Logger, store Store, opts ...Option) *Service {
	s := &Service{
		log:    log,
		store:  store,
		rating: rating.New(store),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
