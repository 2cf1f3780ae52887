package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// CreateComment добавляет комментарий к отзыву. Отзыв должен принадлежать
// произведению titleID, иначе models.ErrReviewNotFound.
func (s *Service) CreateComment(ctx context.Context, caller policy.Caller, titleID, reviewID int64,
	text string) (*models.Comment, error) {
	const op = "content.CreateComment"
	if err := policy.Gate(caller, policy.ActionCreate, policy.KindComment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.store.CreateComment(ctx, titleID, models.Comment{
		ReviewID:  reviewID,
		AuthorUID: caller.ID,
		Text:      text,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("comment created", sl.Op(op), slog.Int64("comment_id", comment.ID),
		slog.Int64("review_id", reviewID), slog.String("author", caller.Username))
	return comment, nil
}

// UpdateComment меняет текст комментария. Доступно автору и модерации.
// Пустой текст проверяется после прав доступа.
func (s *Service) UpdateComment(ctx context.Context, caller policy.Caller, titleID, reviewID, commentID int64,
	text string) (*models.Comment, error) {
	const op = "content.UpdateComment"
	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindComment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Enforce(caller, policy.ActionUpdate, policy.Resource{
		Kind: policy.KindComment, AuthorID: current.AuthorUID,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmptyText)
	}

	updated, err := s.store.UpdateComment(ctx, commentID, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteComment удаляет комментарий. Доступно автору и модерации.
func (s *Service) DeleteComment(ctx context.Context, caller policy.Caller, titleID, reviewID, commentID int64) error {
	const op = "content.DeleteComment"
	if err := policy.Gate(caller, policy.ActionDelete, policy.KindComment); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.store.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.Enforce(caller, policy.ActionDelete, policy.Resource{
		Kind: policy.KindComment, AuthorID: current.AuthorUID,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("comment deleted", sl.Op(op), slog.Int64("comment_id", commentID), slog.String("by", caller.Username))
	return nil
}

// GetComment возвращает комментарий, если отзыв принадлежит произведению titleID.
func (s *Service) GetComment(ctx context.Context, caller policy.Caller, titleID, reviewID,
	commentID int64) (*models.Comment, error) {
	const op = "content.GetComment"
	if err := policy.Gate(caller, policy.ActionRetrieve, policy.KindComment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	comment, err := s.store.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return comment, nil
}

// ListComments возвращает страницу комментариев к отзыву.
// Несуществующий отзыв или отзыв другого произведения дают models.ErrReviewNotFound.
func (s *Service) ListComments(ctx context.Context, caller policy.Caller, titleID, reviewID int64,
	page models.Page) ([]*models.Comment, int, error) {
	const op = "content.ListComments"
	if err := policy.Gate(caller, policy.ActionList, policy.KindComment); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.store.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	comments, total, err := s.store.ListComments(ctx, titleID, reviewID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return comments, total, nil
}
