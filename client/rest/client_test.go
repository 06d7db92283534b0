package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveJSON(status int, payload any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(serveJSON(http.StatusOK, map[string]any{
		"access_token":  "tok-a",
		"refresh_token": "tok-r",
		"expires_in":    900,
		"user":          map[string]any{"id": "u1", "email": "a@b.com"},
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Login(context.Background(), "a@b.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken != "tok-a" || res.Profile.ID != "u1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoginUnauthorizedUsesFixedMessage(t *testing.T) {
	srv := httptest.NewServer(serveJSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong-password")
	if err == nil {
		t.Fatalf("expected error")
	}
	if ErrorKind(err) != KindAuth {
		t.Fatalf("expected auth kind, got %s", ErrorKind(err))
	}
	var restErr *Error
	if !errors.As(err, &restErr) || restErr.Message != "Invalid email or password" {
		t.Fatalf("expected fixed message, got %v", err)
	}
}

func TestLoginLocalValidationSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Login(context.Background(), "not-an-email", "x"); ErrorKind(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.Login(context.Background(), "a@b.com", ""); ErrorKind(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatalf("local validation must not hit the network")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusBadRequest, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(serveJSON(tc.status, map[string]string{"error": "nope"}))
		c := NewClient(srv.URL)
		_, err := c.UserDetails(context.Background(), "tok")
		srv.Close()
		if ErrorKind(err) != tc.want {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.want, err)
		}
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	c := NewClient(srv.URL)
	_, err := c.UserDetails(context.Background(), "tok")
	if ErrorKind(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestUserDetailsSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		serveJSON(http.StatusOK, map[string]any{"id": "u1"})(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	profile, err := c.UserDetails(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("user details: %v", err)
	}
	if profile.ID != "u1" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestConfirmPasswordResetBadCodeMessage(t *testing.T) {
	srv := httptest.NewServer(serveJSON(http.StatusUnauthorized, map[string]string{"error": "reset code invalid or expired"}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.ConfirmPasswordReset(context.Background(), "a@b.com", "bad-code", "longenough")
	var restErr *Error
	if !errors.As(err, &restErr) || restErr.Message != "That reset code is invalid or has expired." {
		t.Fatalf("expected override message, got %v", err)
	}
}
