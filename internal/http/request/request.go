// Package request разбирает входные данные HTTP-запросов: JSON-тело,
// параметры пути и пагинацию.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var (
	// ErrInvalidBody тело запроса не является корректным JSON.
	ErrInvalidBody = apperr.New(apperr.ErrValidation, "JSON parse error.")

	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

// NewValidator валидатор, который называет поля по их JSON-тегам
// и понимает теги slug и username.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	// username попадает в путь /users/{username}, поэтому без '/', пробелов и '?'.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Decode читает JSON-тело в dst и проверяет его валидатором v.
func Decode(r *http.Request, v *validator.Validate, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return ErrInvalidBody
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ValidationError(verrs)
		}
		return fmt.Errorf("request.Decode: %w", err)
	}
	return nil
}

// ValidationError переводит ошибки валидатора в ошибку по полям.
func ValidationError(errs validator.ValidationErrors) error {
	fields := make(map[string][]string, len(errs))
	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = "This field is required."
		case "max":
			msg = fmt.Sprintf("Ensure this field has no more than %s characters.", err.Param())
		case "min":
			msg = fmt.Sprintf("Ensure this field has at least %s characters.", err.Param())
		case "email":
			msg = "Enter a valid email address."
		case "slug":
			msg = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
		case "username":
			msg = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
		case "oneof":
			msg = fmt.Sprintf("Value must be one of: %s.", err.Param())
		case "gte", "lte":
			msg = fmt.Sprintf("Ensure this value satisfies %s %s.", err.ActualTag(), err.Param())
		default:
			msg = "This field is not valid."
		}
		fields[err.Field()] = append(fields[err.Field()], msg)
	}
	return apperr.Validation(fields)
}

// ID числовой параметр пути name. Нечисловое значение означает,
// что ресурса с таким идентификатором нет.
func ID(r *http.Request, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

// Page параметры limit и offset из строки запроса.
func Page(r *http.Request) models.Page {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return models.Page{Limit: limit, Offset: offset}
}
