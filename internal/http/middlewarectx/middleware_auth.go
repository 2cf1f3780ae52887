// Package middlewarectx содержит HTTP middleware: проверку bearer-токена,
// ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware не требует токена: запрос без заголовка Authorization
// проходит дальше как анонимный, а права проверяют сервисы.
// Присланный, но невалидный токен отклоняется с 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/review-aggregator/internal/http/response"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

type ctxKey struct{}

// ErrInvalidToken ответ клиенту при отклонённом токене.
var ErrInvalidToken = apperr.New(apperr.ErrAuthentication, "Given token not valid for any token type")

// Authenticator проверяет токен и возвращает вызывающего.
type Authenticator interface {
	ValidateToken(token string) (policy.Caller, error)
}

// JWTMiddleware кладёт в контекст вызывающего, определённого по заголовку Authorization.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), policy.Anonymous)))
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Warn("malformed authorization header")
				response.Error(w, r, ErrInvalidToken)
				return
			}

			caller, err := auth.ValidateToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				response.Error(w, r, ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// WithCaller возвращает контекст с вызывающим.
func WithCaller(ctx context.Context, caller policy.Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFrom вызывающий из контекста. Без JWTMiddleware это policy.Anonymous.
func CallerFrom(ctx context.Context) policy.Caller {
	caller, ok := ctx.Value(ctxKey{}).(policy.Caller)
	if !ok {
		return policy.Anonymous
	}
	return caller
}
