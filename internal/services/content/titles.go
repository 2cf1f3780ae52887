package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// CreateTitle создаёт произведение и возвращает его в сохранённом виде.
func (s *Service) CreateTitle(ctx context.Context, caller policy.Caller, in models.TitleInput) (*models.Title, error) {
	const op = "content.CreateTitle"
	if err := policy.Gate(caller, policy.ActionCreate, policy.KindTitle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkYear(in.Year); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateTitle(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("title created", sl.Op(op), slog.Int64("title_id", id), slog.String("by", caller.Username))
	return s.getTitle(ctx, op, id)
}

// UpdateTitle частично обновляет произведение. Год проверяется при каждом изменении.
func (s *Service) UpdateTitle(ctx context.Context, caller policy.Caller, id int64, patch models.TitlePatch) (*models.Title, error) {
	const op = "content.UpdateTitle"
	if err := policy.Gate(caller, policy.ActionUpdate, policy.KindTitle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Year != nil {
		if err := s.checkYear(*patch.Year); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.store.UpdateTitle(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.getTitle(ctx, op, id)
}

// DeleteTitle удаляет произведение вместе с отзывами и комментариями.
func (s *Service) DeleteTitle(ctx context.Context, caller policy.Caller, id int64) error {
	const op = "content.DeleteTitle"
	if err := policy.Gate(caller, policy.ActionDelete, policy.KindTitle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.DeleteTitle(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("title deleted", sl.Op(op), slog.Int64("title_id", id), slog.String("by", caller.Username))
	return nil
}

// GetTitle возвращает произведение с текущим рейтингом.
func (s *Service) GetTitle(ctx context.Context, caller policy.Caller, id int64) (*models.Title, error) {
	const op = "content.GetTitle"
	if err := policy.Gate(caller, policy.ActionRetrieve, policy.KindTitle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.getTitle(ctx, op, id)
}

// ListTitles возвращает страницу произведений с рейтингами и общее количество.
func (s *Service) ListTitles(ctx context.Context, caller policy.Caller, filter models.TitleFilter,
	page models.Page) ([]*models.Title, int, error) {
	const op = "content.ListTitles"
	if err := policy.Gate(caller, policy.ActionList, policy.KindTitle); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	titles, total, err := s.store.ListTitles(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return titles, total, nil
}

func (s *Service) getTitle(ctx context.Context, op string, id int64) (*models.Title, error) {
	title, err := s.store.GetTitle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if title.Rating, err = s.rating.ComputeRating(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return title, nil
}

func (s *Service) checkYear(year int) error {
	if year > s.now().Year() {
		return models.ErrInvalidYear
	}
	return nil
}

func (s *Service) requireTitle(ctx context.Context, id int64) error {
	exists, err := s.store.TitleExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrTitleNotFound
	}
	return nil
}
