// Package rating вычисляет средний рейтинг произведения по оценкам отзывов.
//
// Рейтинг нигде не хранится: он пересчитывается при каждом чтении,
// поэтому сразу отражает созданные, изменённые и удалённые отзывы.
package rating

import (
	"context"
	"fmt"
)

// FromStats среднее по сумме и количеству оценок. Для нуля отзывов nil.
func FromStats(sum, count int64) *float64 {
	if count <= 0 {
		return nil
	}
	mean := float64(sum) / float64(count)
	return &mean
}

// Mean среднее арифметическое оценок.
func Mean(scores []int) *float64 {
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	return FromStats(sum, int64(len(scores)))
}

// StatsReader источник агрегатов оценок.
type StatsReader interface {
	ScoreStats(ctx context.Context, titleID int64) (sum, count int64, err error)
}

// Aggregator читает агрегаты из хранилища при каждом вызове.
type Aggregator struct {
	stats StatsReader
}

// New создаёт Aggregator.
func New(stats StatsReader) *Aggregator {
	return &Aggregator{stats: stats}
}

// ComputeRating текущий рейтинг произведения.
func (a *Aggregator) ComputeRating(ctx context.Context, titleID int64) (*float64, error) {
	const op = "rating.ComputeRating"
	sum, count, err := a.stats.ScoreStats(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return FromStats(sum, count), nil
}
