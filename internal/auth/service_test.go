package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sokoni/sokoni/internal/config"
	"github.com/sokoni/sokoni/internal/identity"
	"github.com/sokoni/sokoni/internal/notify"
)

type captureNotifier struct {
	last notify.Message
}

func (c *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	c.last = msg
	return nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ResetCodeTTL:    10 * time.Minute,
	}
}

func registerUser(t *testing.T, repo identity.Repository, email string) identity.User {
	t.Helper()
	user, err := identity.NewService(repo).Register(context.Background(), identity.Credentials{
		Email:    email,
		Password: "original-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestLoginIssuesVerifiableTokenPair(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo, NewMemoryResetStore(), &captureNotifier{})
	user := registerUser(t, repo, "a@b.com")

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.ExpiresIn <= 0 {
		t.Fatalf("expected positive expiry, got %d", pair.ExpiresIn)
	}

	claims, err := ParseAndVerifyHS256(pair.AccessToken, []byte("test-access-secret"))
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != user.ID {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
}

func TestRefreshRotatesAccessToken(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo, NewMemoryResetStore(), &captureNotifier{})
	user := registerUser(t, repo, "a@b.com")

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, ttl, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" || ttl <= 0 {
		t.Fatalf("expected new access token, got %q ttl=%d", access, ttl)
	}

	// An access token is signed with the wrong secret for refreshing.
	if _, _, err := svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatalf("expected refresh to reject an access token")
	}
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	repo := identity.NewMemoryRepository()
	svc := NewService(testConfig(), repo, NewMemoryResetStore(), &captureNotifier{})
	user := registerUser(t, repo, "a@b.com")

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatalf("expected version-bumped refresh token to be rejected")
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	repo := identity.NewMemoryRepository()
	notifier := &captureNotifier{}
	svc := NewService(testConfig(), repo, NewMemoryResetStore(), notifier)
	registerUser(t, repo, "reset@b.com")

	ctx := context.Background()
	if err := svc.RequestPasswordReset(ctx, "reset@b.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if notifier.last.Kind != notify.KindPasswordReset {
		t.Fatalf("expected reset notification, got %+v", notifier.last)
	}
	code := strings.TrimPrefix(notifier.last.Body, "Your password reset code: ")

	if err := svc.ConfirmPasswordReset(ctx, "reset@b.com", "wrong-code", "brand-new-password"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid, got %v", err)
	}
	if err := svc.ConfirmPasswordReset(ctx, "reset@b.com", code, "brand-new-password"); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	idSvc := identity.NewService(repo)
	if _, err := idSvc.Authenticate(ctx, "reset@b.com", "original-password"); err == nil {
		t.Fatalf("old password must stop working")
	}
	if _, err := idSvc.Authenticate(ctx, "reset@b.com", "brand-new-password"); err != nil {
		t.Fatalf("new password: %v", err)
	}

	// The code is single use.
	if err := svc.ConfirmPasswordReset(ctx, "reset@b.com", code, "another-password"); err == nil {
		t.Fatalf("expected spent code to be rejected")
	}
}

func TestRequestPasswordResetSilentOnUnknownEmail(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(testConfig(), identity.NewMemoryRepository(), NewMemoryResetStore(), notifier)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@b.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if notifier.last.Kind != "" {
		t.Fatalf("expected no notification for unknown email")
	}
}
