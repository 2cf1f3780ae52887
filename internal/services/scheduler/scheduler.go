// Package scheduler периодически удаляет просроченные коды подтверждения.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/metrics"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
)

// ConfirmationRepository хранилище кодов подтверждения.
type ConfirmationRepository interface {
	PurgeExpiredConfirmations(ctx context.Context, before time.Time) (int64, error)
}

// SchedulerService запускает очистку по таймеру.
type SchedulerService struct {
	repo ConfirmationRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ConfirmationRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// PurgeExpiredConfirmations один проход очистки.
func (s *SchedulerService) PurgeExpiredConfirmations(ctx context.Context) (int64, error) {
	const op = "scheduler.PurgeExpiredConfirmations"
	n, err := s.repo.PurgeExpiredConfirmations(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.ConfirmationsPurgedTotal.Add(float64(n))
	return n, nil
}

// Run выполняет очистку сразу и затем каждые interval, пока ctx не отменён.
// Ошибка одного прохода не останавливает следующие.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	n, err := s.PurgeExpiredConfirmations(ctx)
	if err != nil {
		s.log.Error("failed to purge expired confirmation codes", sl.Err(err))
		return
	}
	if n == 0 {
		s.log.Debug("no expired confirmation codes found")
		return
	}
	s.log.Info("expired confirmation codes purged", slog.Int64("count", n))
}
