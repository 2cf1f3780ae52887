// Package catalog справочники категорий и жанров.
//
// Полные списки справочников кешируются в Redis под ключом catalog:<kind>
// и сбрасываются при каждом изменении. Ошибки кеша не прерывают запрос:
// сервис пишет их в лог и идёт в хранилище.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/metrics"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// Store контракт хранилища справочников.
type Store interface {
	ListCatalog(ctx context.Context, kind models.CatalogKind, search string) ([]models.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, kind models.CatalogKind, item models.CatalogItem) error
	DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, slug string) error
}

// Cache контракт кеша.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service сервис справочников.
type Service struct {
	log   *slog.Logger
	store Store
	cache Cache
	ttl   time.Duration
}

// New создаёт Service. ttl время жизни закешированного списка.
func New(log *slog.Logger, store Store, cache Cache, ttl time.Duration) *Service {
	return &Service{log: log, store: store, cache: cache, ttl: ttl}
}

// CacheKey ключ кеша для справочника kind.
func CacheKey(kind models.CatalogKind) string {
	return "catalog:" + string(kind)
}

// ResourceKind тип ресурса политики доступа для справочника kind.
func ResourceKind(kind models.CatalogKind) policy.Kind {
	if kind == models.CatalogGenres {
		return policy.KindGenre
	}
	return policy.KindCategory
}

// List записи справочника. Поиск по name идёт мимо кеша.
func (s *Service) List(ctx context.Context, caller policy.Caller, kind models.CatalogKind,
	search string) ([]models.CatalogItem, error) {
	const op = "catalog.List"
	log := s.log.With(sl.Op(op), slog.String("kind", string(kind)))

	if err := policy.Gate(caller, policy.ActionList, ResourceKind(kind)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if search != "" {
		items, err := s.store.ListCatalog(ctx, kind, search)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return items, nil
	}

	var items []models.CatalogItem
	found, err := s.cache.Get(ctx, CacheKey(kind), &items)
	switch {
	case err != nil:
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		log.Warn("catalog cache read failed", sl.Err(err))
	case found:
		metrics.CatalogCacheRequests.WithLabelValues("hit").Inc()
		return items, nil
	default:
		metrics.CatalogCacheRequests.WithLabelValues("miss").Inc()
	}

	items, err = s.store.ListCatalog(ctx, kind, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, CacheKey(kind), items, s.ttl); err != nil {
		log.Warn("catalog cache write failed", sl.Err(err))
	}
	return items, nil
}

// Create добавляет запись в справочник. Только для администратора.
func (s *Service) Create(ctx context.Context, caller policy.Caller, kind models.CatalogKind,
	item models.CatalogItem) (models.CatalogItem, error) {
	const op = "catalog.Create"
	if err := policy.Gate(caller, policy.ActionCreate, ResourceKind(kind)); err != nil {
		return models.CatalogItem{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.CreateCatalogItem(ctx, kind, item); err != nil {
		return models.CatalogItem{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op, kind)
	s.log.Info("catalog item created", sl.Op(op), slog.String("kind", string(kind)), slog.String("slug", item.Slug))
	return item, nil
}

// Delete удаляет запись по slug. Только для администратора.
func (s *Service) Delete(ctx context.Context, caller policy.Caller, kind models.CatalogKind, slug string) error {
	const op = "catalog.Delete"
	if err := policy.Gate(caller, policy.ActionDelete, ResourceKind(kind)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.DeleteCatalogItem(ctx, kind, slug); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op, kind)
	s.log.Info("catalog item deleted", sl.Op(op), slog.String("kind", string(kind)), slog.String("slug", slug))
	return nil
}

func (s *Service) invalidate(ctx context.Context, op string, kind models.CatalogKind) {
	if err := s.cache.Invalidate(ctx, CacheKey(kind)); err != nil {
		s.log.Error("catalog cache invalidation failed", sl.Op(op), sl.Err(err))
	}
}
