// Package auth выпускает учётные данные: регистрация по e-mail,
// одноразовый код подтверждения и обмен кода на bearer-токен.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/metrics"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/secret"
	"github.com/magabrotheeeer/review-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
)

// reservedUsername занят маршрутом /users/me.
const reservedUsername = "me"

// UserRepository описывает контракт хранилища учётных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User, conf models.Confirmation) (*models.User, error)
	GetConfirmation(ctx context.Context, username string) (*models.User, models.Confirmation, error)
	SetConfirmation(ctx context.Context, username, email string, conf models.Confirmation) error
	ConsumeConfirmation(ctx context.Context, userUID, expectedHash string) (bool, error)
}

// Notifier доставляет код подтверждения пользователю.
type Notifier interface {
	SendConfirmation(ctx context.Context, email, username, code string) error
}

// Issuer регистрирует пользователей и выпускает токены.
type Issuer struct {
	log      *slog.Logger
	users    UserRepository
	notifier Notifier
	jwtMaker jwt.Maker
	cfg      config.Confirmation
	now      func() time.Time
}

// NewIssuer создаёт Issuer.
func NewIssuer(log *slog.Logger, users UserRepository, notifier Notifier, jwtMaker jwt.Maker,
	cfg config.Confirmation) *Issuer {
	return &Issuer{
		log:      log,
		users:    users,
		notifier: notifier,
		jwtMaker: jwtMaker,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RequestSignup создаёт пользователя с ролью user и отправляет ему код подтверждения.
// Дубликаты username и email определяет хранилище.
func (s *Issuer) RequestSignup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "auth.RequestSignup"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	if strings.EqualFold(strings.TrimSpace(username), reservedUsername) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidUsername)
	}

	code, conf, err := s.newConfirmation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Username: username,
		Email:    email,
		Role:     policy.RoleUser,
	}, conf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SignupsTotal.Inc()

	if err := s.notifier.SendConfirmation(ctx, email, username, code); err != nil {
		log.Error("failed to send confirmation code", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user signed up, confirmation code sent")
	return user, nil
}

// ResendCode выпускает новый код для существующей пары username и email.
// Предыдущий код перестаёт действовать.
func (s *Issuer) ResendCode(ctx context.Context, username, email string) error {
	const op = "auth.ResendCode"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	code, conf, err := s.newConfirmation()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetConfirmation(ctx, username, email, conf); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.notifier.SendConfirmation(ctx, email, username, code); err != nil {
		log.Error("failed to send confirmation code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("confirmation code rotated")
	return nil
}

// ExchangeSecret гасит код подтверждения и выпускает токен.
// Неизвестный username даёт models.ErrIdentityNotFound, любой другой
// отказ даёт models.ErrAuthenticationFailed.
func (s *Issuer) ExchangeSecret(ctx context.Context, username, code string) (string, error) {
	const op = "auth.ExchangeSecret"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	user, conf, err := s.users.GetConfirmation(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrIdentityNotFound) {
			metrics.TokenExchangeFailuresTotal.WithLabelValues("unknown_user").Inc()
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case conf.Hash == "":
		return "", s.reject(log, op, "no_code")
	case conf.Expired(s.now()):
		return "", s.reject(log, op, "expired")
	}
	if err := secret.Compare(conf.Hash, code); err != nil {
		return "", s.reject(log, op, "mismatch")
	}

	consumed, err := s.users.ConsumeConfirmation(ctx, user.UID, conf.Hash)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !consumed {
		return "", s.reject(log, op, "consumed")
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Username, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metrics.TokensIssuedTotal.Inc()
	log.Info("token issued")
	return token, nil
}

// ValidateToken проверяет токен и возвращает вызывающего.
// Хранилище не опрашивается: подпись и срок действия достаточны.
func (s *Issuer) ValidateToken(token string) (policy.Caller, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return policy.Anonymous, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := uuid.Parse(claims.UserUID); err != nil {
		return policy.Anonymous, fmt.Errorf("%s: %w: malformed uid", op, jwt.ErrInvalidToken)
	}
	role, err := policy.ParseRole(claims.Role)
	if err != nil {
		return policy.Anonymous, fmt.Errorf("%s: %w: %w", op, jwt.ErrInvalidToken, err)
	}
	return policy.Caller{
		ID:            claims.UserUID,
		Username:      claims.Username,
		Role:          role,
		Authenticated: true,
	}, nil
}

func (s *Issuer) newConfirmation() (string, models.Confirmation, error) {
	code, err := secret.Generate(s.cfg.Alphabet, s.cfg.Length)
	if err != nil {
		return "", models.Confirmation{}, err
	}
	hash, err := secret.Hash(code)
	if err != nil {
		return "", models.Confirmation{}, err
	}
	return code, models.Confirmation{Hash: hash, ExpiresAt: s.now().Add(s.cfg.TTL)}, nil
}

func (s *Issuer) reject(log *slog.Logger, op, reason string) error {
	metrics.TokenExchangeFailuresTotal.WithLabelValues(reason).Inc()
	log.Warn("confirmation code rejected", slog.String("reason", reason))
	return fmt.Errorf("%s: %w", op, models.ErrAuthenticationFailed)
}
