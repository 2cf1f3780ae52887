package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/rating"
)

// CreateTitle создаёт произведение вместе с привязкой к жанрам в одной транзакции.
func (s *Storage) CreateTitle(ctx context.Context, in models.TitleInput) (int64, error) {
	const op = "storage.CreateTitle"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	categoryID, err := resolveCategory(ctx, tx, in.CategorySlug)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO titles (name, year, category_id) VALUES ($1, $2, $3) RETURNING id`,
		in.Name, in.Year, categoryID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translate(err))
	}

	if err = replaceGenres(ctx, tx, id, in.GenreSlugs); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, translate(err))
	}
	return id, nil
}

// UpdateTitle частично обновляет произведение. GenreSlugs == nil оставляет жанры как есть.
func (s *Storage) UpdateTitle(ctx context.Context, id int64, patch models.TitlePatch) error {
	const op = "storage.UpdateTitle"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	// category_id меняется только когда передан slug; пустой slug убирает категорию.
	var categoryID sql.NullInt64
	if patch.CategorySlug != nil {
		if categoryID, err = resolveCategory(ctx, tx, *patch.CategorySlug); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `UPDATE titles SET
			      name = COALESCE($1, name),
			      year = COALESCE($2, year),
			      category_id = CASE WHEN $3::boolean THEN $4 ELSE category_id END
			  WHERE id = $5`
	result, err := tx.ExecContext(ctx, query,
		patch.Name, patch.Year, patch.CategorySlug != nil, categoryID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	if err = rowsAffectedOr(result, models.ErrTitleNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if patch.GenreSlugs != nil {
		if err = replaceGenres(ctx, tx, id, patch.GenreSlugs); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return nil
}

// DeleteTitle удаляет произведение, его отзывы и комментарии к ним.
func (s *Storage) DeleteTitle(ctx context.Context, id int64) error {
	const op = "storage.DeleteTitle"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, models.ErrTitleNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTitle возвращает произведение с категорией и жанрами. Rating не заполняется.
func (s *Storage) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "storage.GetTitle"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT t.id, t.name, t.year, c.name, c.slug
			  FROM titles t
			  LEFT JOIN categories c ON c.id = t.category_id
			  WHERE t.id = $1`
	t := &models.Title{}
	var catName, catSlug sql.NullString
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Year, &catName, &catSlug); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrTitleNotFound))
	}
	if catSlug.Valid {
		t.Category = &models.Category{Name: catName.String, Slug: catSlug.String}
	}

	genres, err := s.genresFor(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.Genres = genresOrEmpty(genres[id])
	return t, nil
}

// TitleExists проверяет наличие произведения.
func (s *Storage) TitleExists(ctx context.Context, id int64) (bool, error) {
	const op = "storage.TitleExists"
	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListTitles возвращает страницу произведений с рейтингом и общее количество.
// Агрегаты оценок берутся одним LEFT JOIN, поэтому произведения без отзывов
// получают рейтинг nil.
func (s *Storage) ListTitles(ctx context.Context, filter models.TitleFilter, page models.Page) ([]*models.Title, int, error) {
	const op = "storage.ListTitles"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)
	where, args := titleFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id` + where
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT t.id, t.name, t.year, c.name, c.slug,
			      COALESCE(st.score_sum, 0), COALESCE(st.score_count, 0)
			  FROM titles t
			  LEFT JOIN categories c ON c.id = t.category_id
			  LEFT JOIN (
			      SELECT title_id, SUM(score) AS score_sum, COUNT(*) AS score_count
			      FROM reviews GROUP BY title_id
			  ) st ON st.title_id = t.id` + where + fmt.Sprintf(`
			  ORDER BY t.id
			  LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []*models.Title{}
	var ids []int64
	for rows.Next() {
		t := &models.Title{}
		var catName, catSlug sql.NullString
		var sum, count int64
		if err := rows.Scan(&t.ID, &t.Name, &t.Year, &catName, &catSlug, &sum, &count); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if catSlug.Valid {
			t.Category = &models.Category{Name: catName.String, Slug: catSlug.String}
		}
		t.Rating = rating.FromStats(sum, count)
		res = append(res, t)
		ids = append(ids, t.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(ids) == 0 {
		return res, total, nil
	}

	genres, err := s.genresFor(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, t := range res {
		t.Genres = genresOrEmpty(genres[t.ID])
	}
	return res, total, nil
}

// ScoreStats сумма и количество оценок произведения.
func (s *Storage) ScoreStats(ctx context.Context, titleID int64) (int64, int64, error) {
	const op = "storage.ScoreStats"
	var sum, count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0), COUNT(*) FROM reviews WHERE title_id = $1`, titleID).Scan(&sum, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return sum, count, nil
}

func titleFilterClause(f models.TitleFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.Genre != "" {
		args = append(args, f.Genre)
		conds = append(conds, fmt.Sprintf(`EXISTS (SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d)`, len(args)))
	}
	if f.Name != "" {
		args = append(args, "%"+escapeLike(f.Name)+"%")
		conds = append(conds, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		conds = append(conds, fmt.Sprintf("t.year = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\t\t  WHERE " + strings.Join(conds, " AND "), args
}

// genresFor загружает жанры для набора произведений, отсортированные по slug.
func (s *Storage) genresFor(ctx context.Context, titleIDs []int64) (map[int64][]models.Genre, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT tg.title_id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY tg.title_id, g.slug`, titleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[int64][]models.Genre, len(titleIDs))
	for rows.Next() {
		var id int64
		var g models.Genre
		if err := rows.Scan(&id, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		res[id] = append(res[id], g)
	}
	return res, rows.Err()
}

func genresOrEmpty(g []models.Genre) []models.Genre {
	if g == nil {
		return []models.Genre{}
	}
	return g
}

// resolveCategory ищет категорию по slug. Пустой slug означает отсутствие категории.
func resolveCategory(ctx context.Context, tx *sql.Tx, slug string) (sql.NullInt64, error) {
	if slug == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		return sql.NullInt64{}, notFound(err, models.ErrUnknownCategory)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// replaceGenres заменяет набор жанров произведения. Неизвестный slug даёт ErrUnknownGenre.
func replaceGenres(ctx context.Context, tx *sql.Tx, titleID int64, slugs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = $1`, titleID); err != nil {
		return err
	}
	if len(slugs) == 0 {
		return nil
	}
	unique := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		unique[slug] = struct{}{}
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO title_genres (title_id, genre_id)
		SELECT $1, id FROM genres WHERE slug = ANY($2)`, titleID, slugs)
	if err != nil {
		return translate(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(unique) {
		return models.ErrUnknownGenre
	}
	return nil
}
