package models

import "github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"

// Ошибки предметной области. Каждая разворачивается в категорию apperr.
var (
	ErrIdentityNotFound     = apperr.New(apperr.ErrNotFound, "user not found")
	ErrAuthenticationFailed = apperr.New(apperr.ErrAuthentication, "invalid or expired confirmation code")
	ErrTitleNotFound        = apperr.New(apperr.ErrNotFound, "title not found")
	ErrReviewNotFound       = apperr.New(apperr.ErrNotFound, "review not found")
	ErrCommentNotFound      = apperr.New(apperr.ErrNotFound, "comment not found")
	ErrCategoryNotFound     = apperr.New(apperr.ErrNotFound, "category not found")
	ErrGenreNotFound        = apperr.New(apperr.ErrNotFound, "genre not found")

	ErrDuplicateReview   = apperr.New(apperr.ErrConflict, "you have already reviewed this title")
	ErrDuplicateIdentity = apperr.New(apperr.ErrConflict, "user already exists")
	// ErrDuplicateUsername и ErrDuplicateEmail уточняют ErrDuplicateIdentity полем.
	ErrDuplicateUsername = apperr.Field(ErrDuplicateIdentity, "username", "a user with that username already exists")
	ErrDuplicateEmail    = apperr.Field(ErrDuplicateIdentity, "email", "a user with that email already exists")
	ErrDuplicateSlug     = apperr.Field(apperr.ErrConflict, "slug", "an entry with that slug already exists")
	ErrDuplicateName     = apperr.Field(apperr.ErrConflict, "name", "an entry with that name already exists")

	ErrInvalidUsername = apperr.Field(apperr.ErrValidation, "username", `"me" cannot be used as a username`)
	ErrInvalidScore    = apperr.Field(apperr.ErrValidation, "score", "score must be between 1 and 10")
	ErrEmptyText       = apperr.Field(apperr.ErrValidation, "text", "This field may not be blank.")
	ErrInvalidYear     = apperr.Field(apperr.ErrValidation, "year", "year cannot be in the future")
	ErrUnknownCategory = apperr.Field(apperr.ErrValidation, "category", "unknown category slug")
	ErrUnknownGenre    = apperr.Field(apperr.ErrValidation, "genre", "unknown genre slug")
)

// ValidScore оценка в допустимом диапазоне.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
