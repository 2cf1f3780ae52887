// Package storage реализует хранилище данных на основе PostgreSQL:
// пользователи и коды подтверждения, справочники, произведения,
// отзывы и комментарии.
//
// Инварианты модели (уникальность отзыва, диапазон оценки, каскадное
// удаление) обеспечиваются ограничениями схемы. Нарушения ограничений
// переводятся в доменные ошибки из пакета models по имени ограничения.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'reviews'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: required table reviews missing")
	}
	return nil
}

// constraintErrors сопоставляет имена ограничений схемы с доменными ошибками.
var constraintErrors = map[string]error{
	"uq_users_username":          models.ErrDuplicateUsername,
	"uq_users_email":             models.ErrDuplicateEmail,
	"ck_users_username_not_me":   models.ErrInvalidUsername,
	"uq_categories_name":         models.ErrDuplicateName,
	"uq_categories_slug":         models.ErrDuplicateSlug,
	"uq_genres_name":             models.ErrDuplicateName,
	"uq_genres_slug":             models.ErrDuplicateSlug,
	"titles_category_id_fkey":    models.ErrUnknownCategory,
	"title_genres_genre_id_fkey": models.ErrUnknownGenre,
	"title_genres_title_id_fkey": models.ErrTitleNotFound,
	"uq_reviews_title_author":    models.ErrDuplicateReview,
	"fk_reviews_title":           models.ErrTitleNotFound,
	"ck_reviews_score":           models.ErrInvalidScore,
	"reviews_author_uid_fkey":    models.ErrIdentityNotFound,
	"fk_comments_review":         models.ErrReviewNotFound,
	"comments_author_uid_fkey":   models.ErrIdentityNotFound,
}

// translate переводит нарушение ограничения в доменную ошибку.
// Прочие ошибки возвращаются без изменений.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
		if domainErr, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return domainErr
		}
	}
	return err
}

// notFound заменяет sql.ErrNoRows на доменную ошибку.
func notFound(err, domainErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr
	}
	return err
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// rowsAffectedOr возвращает domainErr, если запрос не затронул ни одной строки.
func rowsAffectedOr(result sql.Result, domainErr error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domainErr
	}
	return nil
}

func limitOffset(page models.Page) (int, int) {
	limit, offset := page.Limit, page.Offset
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
