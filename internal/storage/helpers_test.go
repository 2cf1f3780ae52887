package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/review-aggregator/internal/migrations"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// setupTestDatabase поднимает контейнер PostgreSQL и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		if storage, err = New(connStr); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// testFactory создаёт тестовые данные через публичные методы хранилища.
type testFactory struct {
	t       *testing.T
	storage *Storage
}

func newTestFactory(t *testing.T, storage *Storage) *testFactory {
	return &testFactory{t: t, storage: storage}
}

func (f *testFactory) user(username string) *models.User {
	f.t.Helper()
	u, err := f.storage.CreateUser(context.Background(), models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     policy.RoleUser,
	}, models.Confirmation{})
	require.NoError(f.t, err)
	return u
}

func (f *testFactory) catalog(kind models.CatalogKind, name, slug string) {
	f.t.Helper()
	require.NoError(f.t, f.storage.CreateCatalogItem(context.Background(), kind, models.CatalogItem{Name: name, Slug: slug}))
}

func (f *testFactory) title(name string, year int, category string, genres ...string) int64 {
	f.t.Helper()
	id, err := f.storage.CreateTitle(context.Background(), models.TitleInput{
		Name:         name,
		Year:         year,
		CategorySlug: category,
		GenreSlugs:   genres,
	})
	require.NoError(f.t, err)
	return id
}

func (f *testFactory) review(titleID int64, author *models.User, score int) *models.Review {
	f.t.Helper()
	r, err := f.storage.CreateReview(context.Background(), models.Review{
		TitleID:   titleID,
		AuthorUID: author.UID,
		Text:      "text",
		Score:     score,
	})
	require.NoError(f.t, err)
	return r
}
