package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

// catalogTable возвращает имя таблицы справочника. Имя подставляется в запрос,
// поэтому допускаются только известные значения.
func catalogTable(kind models.CatalogKind) (string, error) {
	switch kind {
	case models.CatalogCategories:
		return "categories", nil
	case models.CatalogGenres:
		return "genres", nil
	}
	return "", fmt.Errorf("unknown catalog kind %q", kind)
}

func catalogNotFound(kind models.CatalogKind) error {
	if kind == models.CatalogGenres {
		return models.ErrGenreNotFound
	}
	return models.ErrCategoryNotFound
}

// ListCatalog возвращает записи справочника в порядке создания.
// search фильтрует по вхождению в name.
func (s *Storage) ListCatalog(ctx context.Context, kind models.CatalogKind, search string) ([]models.CatalogItem, error) {
	const op = "storage.ListCatalog"
	table, err := catalogTable(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT name, slug FROM ` + table + ` WHERE name ILIKE $1 ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, "%"+escapeLike(search)+"%")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []models.CatalogItem{}
	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(&item.Name, &item.Slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateCatalogItem добавляет запись. Повтор name или slug даёт ошибку конфликта по полю.
func (s *Storage) CreateCatalogItem(ctx context.Context, kind models.CatalogKind, item models.CatalogItem) error {
	const op = "storage.CreateCatalogItem"
	table, err := catalogTable(kind)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = s.DB.ExecContext(ctx,
		`INSERT INTO `+table+` (name, slug) VALUES ($1, $2)`, item.Name, item.Slug); err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return nil
}

// DeleteCatalogItem удаляет запись по slug. Произведения теряют категорию,
// связи с жанром удаляются каскадно.
func (s *Storage) DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, slug string) error {
	const op = "storage.DeleteCatalogItem"
	table, err := catalogTable(kind)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM `+table+` WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffectedOr(result, catalogNotFound(kind)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
