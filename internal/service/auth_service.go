package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthService coordinates registration and login flows: credential checks,
// token issuance and audit event publication.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	hasher     *auth.PasswordHasher
	limiter    *LoginLimiter
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Redis      *redis.Client
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		limiter:    NewLoginLimiter(deps.Redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginCooldown()),
		dispatcher: deps.Dispatcher,
	}
}

// Register creates a new account and issues its first token. Roles default to
// ROLE_USER when the caller supplies none.
func (s *AuthService) Register(ctx context.Context, name, email, password string, roles []domain.Role) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.Email, events.UserRegisteredPayload{Roles: user.Roles})
	return user, token, exp, nil
}

// Login verifies credentials and issues a token. An unknown email and a wrong
// password both surface as the same generic bad-credentials error so callers
// cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if err := s.limiter.Enforce(ctx, email); err != nil {
		if errors.Is(err, ErrLoginRateLimited) {
			s.publish(ctx, events.EventLoginFailed, email, events.LoginFailedPayload{Reason: "rate limited"})
			return nil, "", time.Time{}, apperrors.NewRateLimited("too many login attempts")
		}
		// throttle backend unavailable: fail open
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.publish(ctx, events.EventLoginFailed, email, events.LoginFailedPayload{Reason: "unknown identifier"})
			return nil, "", time.Time{}, apperrors.NewBadCredentials()
		}
		return nil, "", time.Time{}, err
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		s.publish(ctx, events.EventLoginFailed, email, events.LoginFailedPayload{Reason: "password mismatch"})
		return nil, "", time.Time{}, apperrors.NewBadCredentials()
	}

	token, exp, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.limiter.Reset(ctx, email)
	s.publish(ctx, events.EventLoginSucceeded, user.Email, nil)
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
