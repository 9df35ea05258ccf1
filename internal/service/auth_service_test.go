package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/testutil"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
			LoginMaxAttempts:      3,
			LoginCooldownSeconds:  60,
		},
	}
}

func newTestService(t *testing.T) (*AuthService, *testutil.InMemoryUserRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := testutil.NewInMemoryUserRepository()
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo:   repo,
		Redis:      client,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return svc, repo
}

func domainErrCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestRegisterIssuesDecodableToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected persisted user ID")
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleUser {
		t.Errorf("roles = %v, want default [ROLE_USER]", user.Roles)
	}
	if exp.IsZero() {
		t.Error("expected non-zero expiry")
	}

	claims, err := svc.TokenManager().Parse(token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "alice@x.com" {
		t.Errorf("token subject = %q, want alice@x.com", claims.Subject)
	}
}

func TestRegisterKeepsExplicitRoles(t *testing.T) {
	svc, _ := newTestService(t)

	user, _, _, err := svc.Register(context.Background(), "Root", "root@x.com", "pw123",
		domain.ParseRoles("ADMIN,USER"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !domain.HasRole(user.Roles, domain.RoleAdmin) || !domain.HasRole(user.Roles, domain.RoleUser) {
		t.Errorf("roles = %v, want ROLE_ADMIN and ROLE_USER", user.Roles)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, _, _, err := svc.Register(ctx, "Other", "alice@x.com", "pw456", nil)
	if code := domainErrCode(t, err); code != "CONFLICT" {
		t.Fatalf("code = %q, want CONFLICT", code)
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, token, _, err := svc.Login(ctx, "alice@x.com", "pw123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Email != "alice@x.com" {
		t.Errorf("email = %q", user.Email)
	}

	claims, err := svc.TokenManager().Parse(token)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleUser {
		t.Errorf("token roles = %v, want [ROLE_USER]", claims.Roles)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, _, wrongPassword := svc.Login(ctx, "alice@x.com", "wrongpw")
	_, _, _, unknownUser := svc.Login(ctx, "nobody@x.com", "pw123")

	wrongCode := domainErrCode(t, wrongPassword)
	unknownCode := domainErrCode(t, unknownUser)
	if wrongCode != "BAD_CREDENTIALS" || unknownCode != "BAD_CREDENTIALS" {
		t.Fatalf("codes = %q/%q, want BAD_CREDENTIALS for both", wrongCode, unknownCode)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatal("messages must not reveal whether the account exists")
	}
}

func TestLoginRateLimited(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, _, err := svc.Login(ctx, "alice@x.com", "wrongpw"); domainErrCode(t, err) != "BAD_CREDENTIALS" {
			t.Fatalf("attempt %d: expected BAD_CREDENTIALS", i+1)
		}
	}

	_, _, _, err := svc.Login(ctx, "alice@x.com", "pw123")
	if code := domainErrCode(t, err); code != "RATE_LIMITED" {
		t.Fatalf("code = %q, want RATE_LIMITED after exhausting attempts", code)
	}
}

func TestSuccessfulLoginResetsThrottle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, _, _, _ = svc.Login(ctx, "alice@x.com", "wrongpw")
	}
	if _, _, _, err := svc.Login(ctx, "alice@x.com", "pw123"); err != nil {
		t.Fatalf("third attempt with correct password failed: %v", err)
	}

	// the window restarted, so two more bad attempts stay below the limit
	for i := 0; i < 2; i++ {
		if _, _, _, err := svc.Login(ctx, "alice@x.com", "wrongpw"); domainErrCode(t, err) != "BAD_CREDENTIALS" {
			t.Fatalf("post-reset attempt %d: expected BAD_CREDENTIALS", i+1)
		}
	}
}

func TestLoginPublishesAuditEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dispatcher := events.NewInMemoryDispatcher()
	var types []events.EventType
	record := func(_ context.Context, event events.Event) error {
		types = append(types, event.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventUserRegistered, record)
	dispatcher.Subscribe(events.EventLoginSucceeded, record)
	dispatcher.Subscribe(events.EventLoginFailed, record)

	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo:   testutil.NewInMemoryUserRepository(),
		Redis:      client,
		Dispatcher: dispatcher,
	})

	ctx := context.Background()
	_, _, _, _ = svc.Register(ctx, "Alice", "alice@x.com", "pw123", nil)
	_, _, _, _ = svc.Login(ctx, "alice@x.com", "wrongpw")
	_, _, _, _ = svc.Login(ctx, "alice@x.com", "pw123")

	want := []events.EventType{events.EventUserRegistered, events.EventLoginFailed, events.EventLoginSucceeded}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("events = %v, want %v", types, want)
		}
	}
}
