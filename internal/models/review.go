package models

import "time"

// Допустимый диапазон оценки.
const (
	MinScore = 1
	MaxScore = 10
)

// Review отзыв пользователя на произведение. Пара (TitleID, AuthorUID) уникальна.
type Review struct {
	ID        int64     `json:"id"`
	TitleID   int64     `json:"title"`
	AuthorUID string    `json:"-"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"pub_date"`
}

// Comment комментарий к отзыву.
type Comment struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"review"`
	AuthorUID string    `json:"-"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"pub_date"`
}
