package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

const userColumns = `uid, username, email, role, bio, first_name, last_name`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.Role, &u.Bio, &u.FirstName, &u.LastName); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя вместе с ожидающим кодом подтверждения.
// Дубликаты username и email определяются уникальными ограничениями.
func (s *Storage) CreateUser(ctx context.Context, user models.User, conf models.Confirmation) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var hash sql.NullString
	var expiresAt sql.NullTime
	if conf.Hash != "" {
		hash = sql.NullString{String: conf.Hash, Valid: true}
		expiresAt = sql.NullTime{Time: conf.ExpiresAt, Valid: true}
	}

	query := `INSERT INTO users (username, email, role, bio, first_name, last_name,
			      confirmation_hash, confirmation_expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Role, user.Bio, user.FirstName, user.LastName,
		hash, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrIdentityNotFound))
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err, models.ErrIdentityNotFound))
	}
	return u, nil
}

// GetConfirmation возвращает пользователя и его ожидающий код подтверждения.
// Если кода нет, Confirmation.Hash пустой.
func (s *Storage) GetConfirmation(ctx context.Context, username string) (*models.User, models.Confirmation, error) {
	const op = "storage.GetConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return nil, models.Confirmation{}, err
	}

	query := `SELECT ` + userColumns + `, confirmation_hash, confirmation_expires_at
			  FROM users WHERE username = $1`
	u := &models.User{}
	var hash sql.NullString
	var expiresAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&u.UID, &u.Username, &u.Email, &u.Role, &u.Bio, &u.FirstName, &u.LastName,
		&hash, &expiresAt)
	if err != nil {
		return nil, models.Confirmation{}, fmt.Errorf("%s: %w", op, notFound(err, models.ErrIdentityNotFound))
	}

	var conf models.Confirmation
	if hash.Valid {
		conf.Hash = hash.String
	}
	if expiresAt.Valid {
		conf.ExpiresAt = expiresAt.Time
	}
	return u, conf, nil
}

// SetConfirmation заменяет код подтверждения пользователя с совпадающими username и email.
func (s *Storage) SetConfirmation(ctx context.Context, username, email string, conf models.Confirmation) error {
	const op = "storage.SetConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users SET confirmation_hash = $1, confirmation_expires_at = $2
			  WHERE username = $3 AND email = $4`
	result, err := s.DB.ExecContext(ctx, query, conf.Hash, conf.ExpiresAt, username, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, models.ErrIdentityNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeConfirmation атомарно гасит код: обновление проходит, только если
// сохранённый хеш всё ещё равен expectedHash. Возвращает false, если код
// уже использован или заменён параллельным запросом.
func (s *Storage) ConsumeConfirmation(ctx context.Context, userUID, expectedHash string) (bool, error) {
	const op = "storage.ConsumeConfirmation"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `UPDATE users SET confirmation_hash = NULL, confirmation_expires_at = NULL
			  WHERE uid = $1 AND confirmation_hash = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, expectedHash)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// ListUsers возвращает страницу пользователей и их общее количество.
// search фильтрует по вхождению в username.
func (s *Storage) ListUsers(ctx context.Context, search string, page models.Page) ([]*models.User, int, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page)
	pattern := "%" + escapeLike(search) + "%"

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE username ILIKE $1
			  ORDER BY username
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return res, total, nil
}

// UpdateUser применяет частичное обновление. Поля со значением nil не меняются,
// username не меняется никогда.
func (s *Storage) UpdateUser(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var role *string
	if patch.Role != nil {
		r := string(*patch.Role)
		role = &r
	}
	query := `UPDATE users SET
			      email = COALESCE($1, email),
			      role = COALESCE($2, role),
			      bio = COALESCE($3, bio),
			      first_name = COALESCE($4, first_name),
			      last_name = COALESCE($5, last_name)
			  WHERE username = $6
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		patch.Email, role, patch.Bio, patch.FirstName, patch.LastName, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(notFound(err, models.ErrIdentityNotFound)))
	}
	return u, nil
}

// DeleteUser удаляет пользователя. Его отзывы и комментарии удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, models.ErrIdentityNotFound); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// PurgeExpiredConfirmations удаляет коды подтверждения, срок которых истёк к моменту before.
// Возвращает число затронутых пользователей.
func (s *Storage) PurgeExpiredConfirmations(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.PurgeExpiredConfirmations"
	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmation_hash = NULL, confirmation_expires_at = NULL
		 WHERE confirmation_expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
