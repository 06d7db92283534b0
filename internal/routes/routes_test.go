package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/config"
	"github.com/sokoni/sokoni/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppName:         "Sokoni",
			Env:             "development",
			JWTSecret:       "test-access-secret",
			RefreshSecret:   "test-refresh-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			ResetCodeTTL:    10 * time.Minute,
			OrderVisibility: 5 * 24 * time.Hour,
		},
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	return requestJSON(t, app, fiber.MethodPost, path, token, payload)
}

func requestJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, _ := postJSON(t, app, "/api/v1/identity/register", "", fiber.Map{
		"email":        email,
		"password":     "longenough",
		"display_name": "Test User",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register: expected 201, got %d", status)
	}
	status, body := postJSON(t, app, "/api/v1/auth/login", "", fiber.Map{
		"email":    email,
		"password": "longenough",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("login: no access token in %v", body)
	}
	return token
}

func TestLoginWrongPasswordMessage(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app, "amina@example.com")

	status, body := postJSON(t, app, "/api/v1/auth/login", "", fiber.Map{
		"email":    "amina@example.com",
		"password": "not-the-password",
	})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	// The same message covers wrong password and unknown email.
	if msg, _ := body["error"].(string); msg != "Invalid email or password" {
		t.Fatalf("expected fixed credentials message, got %v", body)
	}

	status, body = postJSON(t, app, "/api/v1/auth/login", "", fiber.Map{
		"email":    "ghost@example.com",
		"password": "whatever-here",
	})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", status)
	}
	if msg, _ := body["error"].(string); msg != "Invalid email or password" {
		t.Fatalf("expected fixed credentials message, got %v", body)
	}
}

func TestUserDetailsExchange(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "amina@example.com")

	status, body := requestJSON(t, app, fiber.MethodGet, "/api/v1/user-details", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if email, _ := body["email"].(string); email != "amina@example.com" {
		t.Fatalf("expected profile, got %v", body)
	}
	if complete, _ := body["profile_complete"].(bool); complete {
		t.Fatalf("fresh account without address must be incomplete")
	}

	// No token: the exchange fails and the client falls back to logged out.
	status, _ = requestJSON(t, app, fiber.MethodGet, "/api/v1/user-details", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestSwitchRoleRequiresShopName(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "shop@example.com")

	status, _ := requestJSON(t, app, fiber.MethodPut, "/api/v1/switch-role", token, fiber.Map{"seller": true})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without shop name, got %d", status)
	}

	status, body := requestJSON(t, app, fiber.MethodPut, "/api/v1/switch-role", token, fiber.Map{
		"seller":         true,
		"seller_profile": fiber.Map{"shop_name": "Amina's Fabrics"},
	})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if active, _ := body["seller_mode_active"].(bool); !active {
		t.Fatalf("expected seller mode active, got %v", body)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "bye@example.com")

	status, _ := postJSON(t, app, "/api/v1/auth/logout", token, fiber.Map{})
	if status != fiber.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}
	status, _ = requestJSON(t, app, fiber.MethodGet, "/api/v1/user-details", token, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected stale token to be rejected, got %d", status)
	}
}

func TestOrderFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	buyerToken := registerAndLogin(t, app, "buyer@example.com")
	sellerToken := registerAndLogin(t, app, "seller@example.com")

	// Look up the seller's id via their own details.
	_, sellerBody := requestJSON(t, app, fiber.MethodGet, "/api/v1/user-details", sellerToken, nil)
	sellerID, _ := sellerBody["id"].(string)
	if sellerID == "" {
		t.Fatalf("no seller id")
	}

	status, order := postJSON(t, app, "/api/v1/orders", buyerToken, fiber.Map{
		"seller_id":  sellerID,
		"product_id": "p1",
		"title":      "Woven basket",
		"quantity":   1,
		"unit_price": 1500,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("place order: expected 201, got %d (%v)", status, order)
	}
	orderID, _ := order["id"].(string)

	// The buyer may not confirm their own order.
	status, _ = requestJSON(t, app, fiber.MethodPut, "/api/v1/orders/"+orderID+"/status", buyerToken, fiber.Map{"status": "confirmed"})
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for buyer confirm, got %d", status)
	}

	status, updated := requestJSON(t, app, fiber.MethodPut, "/api/v1/orders/"+orderID+"/status", sellerToken, fiber.Map{"status": "confirmed"})
	if status != fiber.StatusOK {
		t.Fatalf("confirm: expected 200, got %d (%v)", status, updated)
	}
	if s, _ := updated["status"].(string); s != "confirmed" {
		t.Fatalf("expected confirmed, got %v", updated)
	}

	status, list := requestJSON(t, app, fiber.MethodGet, "/api/v1/orders/buying", buyerToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list buying: expected 200, got %d", status)
	}
	items, _ := list["orders"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 order, got %v", list)
	}

	// The status change produced a notification for the buyer.
	status, notifs := requestJSON(t, app, fiber.MethodGet, "/api/v1/notifications", buyerToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("notifications: expected 200, got %d", status)
	}
	if items, _ := notifs["notifications"].([]any); len(items) == 0 {
		t.Fatalf("expected a notification, got %v", notifs)
	}
}
