package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

const reviewSelect = `SELECT r.id, r.title_id, r.author_uid, u.username, r.text, r.score, r.created_at
			  FROM reviews r JOIN users u ON u.uid = r.author_uid`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	r := &models.Review{}
	if err := row.Scan(&r.ID, &r.TitleID, &r.AuthorUID, &r.Author, &r.Text, &r.Score, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReview сохраняет отзыв. Повторный отзыв того же автора на то же
// произведение отклоняется ограничением uq_reviews_title_author, поэтому из
// двух параллельных вставок успешна ровно одна.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	const op = "storage.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH ins AS (
			      INSERT INTO reviews (title_id, author_uid, text, score)
			      VALUES ($1, $2, $3, $4)
			      RETURNING id, title_id, author_uid, text, score, created_at
			  )
			  SELECT ins.id, ins.title_id, ins.author_uid, u.username, ins.text, ins.score, ins.created_at
			  FROM ins JOIN users u ON u.uid = ins.author_uid`
	created, err := scanReview(s.DB.QueryRowContext(ctx, query,
		review.TitleID, review.AuthorUID, review.Text, review.Score))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetReview возвращает отзыв, принадлежащий произведению titleID.
func (s *Storage) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "storage.GetReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanReview(s.DB.QueryRowContext(ctx,
		reviewSelect+` WHERE r.id = $1 AND r.title_id = $2`, reviewID, titleID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrReviewNotFound))
	}
	return r, nil
}

// ListReviews возвращает страницу отзывов на произведение и их общее количество.
func (s *Storage) ListReviews(ctx context.Context, titleID int64, page models.Page) ([]*models.Review, int, error) {
	const op = "storage.ListReviews"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		reviewSelect+` WHERE r.title_id = $1 ORDER BY r.id LIMIT $2 OFFSET $3`, titleID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []*models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, r)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// UpdateReview меняет текст и/или оценку. Права проверяются до вызова.
func (s *Storage) UpdateReview(ctx context.Context, reviewID int64, text *string, score *int) (*models.Review, error) {
	const op = "storage.UpdateReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH upd AS (
			      UPDATE reviews SET text = COALESCE($1, text), score = COALESCE($2, score)
			      WHERE id = $3
			      RETURNING id, title_id, author_uid, text, score, created_at
			  )
			  SELECT upd.id, upd.title_id, upd.author_uid, u.username, upd.text, upd.score, upd.created_at
			  FROM upd JOIN users u ON u.uid = upd.author_uid`
	r, err := scanReview(s.DB.QueryRowContext(ctx, query, text, score, reviewID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(notFound(err, models.ErrReviewNotFound)))
	}
	return r, nil
}

// DeleteReview удаляет отзыв и комментарии к нему.
func (s *Storage) DeleteReview(ctx context.Context, reviewID int64) error {
	const op = "storage.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, models.ErrReviewNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
