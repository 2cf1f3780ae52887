package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

const commentSelect = `SELECT c.id, c.review_id, c.author_uid, u.username, c.text, c.created_at
			  FROM comments c
			  JOIN users u ON u.uid = c.author_uid
			  JOIN reviews r ON r.id = c.review_id`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	if err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorUID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment сохраняет комментарий к отзыву reviewID произведения titleID.
// Если отзыв не найден или относится к другому произведению, возвращается
// ErrReviewNotFound. Удаление отзыва в момент вставки даёт ту же ошибку
// через нарушение внешнего ключа.
func (s *Storage) CreateComment(ctx context.Context, titleID int64, comment models.Comment) (*models.Comment, error) {
	const op = "storage.CreateComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH ins AS (
			      INSERT INTO comments (review_id, author_uid, text)
			      SELECT r.id, $2, $3 FROM reviews r WHERE r.id = $1 AND r.title_id = $4
			      RETURNING id, review_id, author_uid, text, created_at
			  )
			  SELECT ins.id, ins.review_id, ins.author_uid, u.username, ins.text, ins.created_at
			  FROM ins JOIN users u ON u.uid = ins.author_uid`
	created, err := scanComment(s.DB.QueryRowContext(ctx, query,
		comment.ReviewID, comment.AuthorUID, comment.Text, titleID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(notFound(err, models.ErrReviewNotFound)))
	}
	return created, nil
}

// GetComment возвращает комментарий, если вся цепочка произведение-отзыв-комментарий согласована.
func (s *Storage) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "storage.GetComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanComment(s.DB.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = $1 AND c.review_id = $2 AND r.title_id = $3`,
		commentID, reviewID, titleID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrCommentNotFound))
	}
	return c, nil
}

// ListComments возвращает страницу комментариев к отзыву и их общее количество.
func (s *Storage) ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) ([]*models.Comment, int, error) {
	const op = "storage.ListComments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments c
		JOIN reviews r ON r.id = c.review_id
		WHERE c.review_id = $1 AND r.title_id = $2`, reviewID, titleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		commentSelect+` WHERE c.review_id = $1 AND r.title_id = $2 ORDER BY c.id LIMIT $3 OFFSET $4`,
		reviewID, titleID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// UpdateComment меняет текст комментария.
func (s *Storage) UpdateComment(ctx context.Context, commentID int64, text string) (*models.Comment, error) {
	const op = "storage.UpdateComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH upd AS (
			      UPDATE comments SET text = $1 WHERE id = $2
			      RETURNING id, review_id, author_uid, text, created_at
			  )
			  SELECT upd.id, upd.review_id, upd.author_uid, u.username, upd.text, upd.created_at
			  FROM upd JOIN users u ON u.uid = upd.author_uid`
	c, err := scanComment(s.DB.QueryRowContext(ctx, query, text, commentID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrCommentNotFound))
	}
	return c, nil
}

// DeleteComment удаляет комментарий.
func (s *Storage) DeleteComment(ctx context.Context, commentID int64) error {
	const op = "storage.DeleteComment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, models.ErrCommentNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
