package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/events"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// Middleware authenticates bearer tokens and enforces the route policy. It
// runs once per request, ahead of every handler.
type Middleware struct {
	tokens     *TokenManager
	policy     *Policy
	dispatcher events.Dispatcher
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, policy *Policy, dispatcher events.Dispatcher) *Middleware {
	return &Middleware{tokens: tokens, policy: policy, dispatcher: dispatcher}
}

// Handle decodes the Authorization header, binds the principal on success and
// authorizes the path. A missing header leaves the request anonymous; a
// present but bad token is rejected outright, even on public routes. The
// response body never distinguishes a forged token from an expired one.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	var principal *Principal

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		claims, err := m.tokens.Validate(parts[1], time.Now())
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				m.publishRejection(c, claims.Subject, "expired")
			} else {
				m.publishRejection(c, "", "invalid")
			}
			return apperrors.NewUnauthorized("invalid or expired token")
		}

		principal = &Principal{Subject: claims.Subject, Roles: claims.Roles}
	}

	decision := m.policy.Authorize(c.Path(), principal)
	if !decision.Allowed {
		if decision.Reason == ReasonForbidden {
			return apperrors.NewForbidden("insufficient role")
		}
		return apperrors.NewUnauthorized("authentication required")
	}

	if principal != nil {
		bindPrincipal(c, principal)
	}
	return c.Next()
}

func (m *Middleware) publishRejection(c *fiber.Ctx, subject, reason string) {
	if m.dispatcher == nil {
		return
	}
	_ = m.dispatcher.Publish(c.Context(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTokenRejected,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   events.TokenRejectedPayload{Path: c.Path(), Reason: reason},
	})
}
