package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/metrics"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// CreateReview публикует отзыв вызывающего на произведение titleID.
// Повторный отзыв того же автора возвращает models.ErrDuplicateReview.
func (s *Service) CreateReview(ctx context.Context, caller policy.Caller, titleID int64, text string,
	score int) (*models.Review, error) {
	const op = "content.CreateReview"
	log := s.log.With(sl.Op(op), slog.Int64("title_id", titleID), slog.String("author", caller.Username))

	if err := policy.Gate(caller, policy.ActionCreate, policy.KindReview); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !models.ValidScore(score) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidScore)
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	review, err := s.store.CreateReview(ctx, models.Review{
		TitleID:   titleID,
		AuthorUID: caller.ID,
		Text:      text,
		Score:     score,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateReview) {
			log.Info("duplicate review rejected")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.ReviewsCreatedTotal.Inc()
	log.Info("review created", slog.Int64("review_id", review.ID))
	return review, nil
}

// UpdateReview меняет текст и/или оценку отзыва. Доступно автору и модерации.
// Значения полей проверяются только после прав доступа.
func (s *Service) UpdateReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64,
	text *string, score *int) (*models.Review, error) {
	const op = "content.UpdateReview"
	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindReview); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Enforce(caller, policy.ActionUpdate, policy.Resource{
		Kind: policy.KindReview, AuthorID: current.AuthorUID,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if score != nil && !models.ValidScore(*score) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidScore)
	}
	if text != nil && strings.TrimSpace(*text) == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmptyText)
	}

	updated, err := s.store.UpdateReview(ctx, reviewID, text, score)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteReview удаляет отзыв вместе с комментариями. Доступно автору и модерации.
func (s *Service) DeleteReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64) error {
	const op = "content.DeleteReview"
	if err := policy.Gate(caller, policy.ActionDelete, policy.KindReview); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Enforce(caller, policy.ActionDelete, policy.Resource{
		Kind: policy.KindReview, AuthorID: current.AuthorUID,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review deleted", sl.Op(op), slog.Int64("review_id", reviewID), slog.String("by", caller.Username))
	return nil
}

// GetReview возвращает отзыв, принадлежащий произведению titleID.
func (s *Service) GetReview(ctx context.Context, caller policy.Caller, titleID, reviewID int64) (*models.Review, error) {
	const op = "content.GetReview"
	if err := policy.Gate(caller, policy.ActionRetrieve, policy.KindReview); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	review, err := s.store.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return review, nil
}

// ListReviews возвращает страницу отзывов на произведение.
func (s *Service) ListReviews(ctx context.Context, caller policy.Caller, titleID int64,
	page models.Page) ([]*models.Review, int, error) {
	const op = "content.ListReviews"
	if err := policy.Gate(caller, policy.ActionList, policy.KindReview); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	reviews, total, err := s.store.ListReviews(ctx, titleID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, total, nil
}
