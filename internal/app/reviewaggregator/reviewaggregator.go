package reviewaggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/review-aggregator/internal/cache"
	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/migrations"
	"github.com/magabrotheeeer/review-aggregator/internal/notification"
	authservice "github.com/magabrotheeeer/review-aggregator/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/review-aggregator/internal/services/catalog"
	"github.com/magabrotheeeer/review-aggregator/internal/services/content"
	userservice "github.com/magabrotheeeer/review-aggregator/internal/services/users"
	"github.com/magabrotheeeer/review-aggregator/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API сервиса отзывов и gRPC-сервер проверки здоровья.
type App struct {
	server     *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *storage.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New подключается к PostgreSQL, Redis и RabbitMQ, применяет миграции
// и собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	const op = "reviewaggregator.New"

	// closers освобождают уже открытые ресурсы, если сборка не удалась.
	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closers = append(closers, db.Close)

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = storage.CheckDatabaseReady(ctx, db); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closers = append(closers, cacheRedis.Close)

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closers = append(closers, conn.Close)

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	closers = append(closers, ch.Close)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	issuer := authservice.NewIssuer(logger, db, notification.NewPublisher(ch), jwtMaker, cfg.Confirmation)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:    issuer,
		Content: content.New(logger, db),
		Users:   userservice.New(logger, db),
		Catalog: catalogservice.New(logger, db, cacheRedis, cfg.CatalogTTL),
	}, cfg.RateLimit)

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &App{
		server: &http.Server{
			Addr:         cfg.AddressHTTP,
			Handler:      router,
			ReadTimeout:  cfg.TimeoutHTTP,
			WriteTimeout: cfg.TimeoutHTTP,
			IdleTimeout:  cfg.IdleTimeout,
		},
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		conn:       conn,
		ch:         ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает серверы
// и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	go func() {
		a.logger.Info("gRPC health server listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()
	a.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	a.health.Shutdown()
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", sl.Err(err))
	}
	a.grpcServer.GracefulStop()
	a.close()
	return runErr
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
