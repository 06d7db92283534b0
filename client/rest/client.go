// Package rest is the typed HTTP client for the Sokoni backend. It owns the
// error taxonomy: every failure comes back as an *Error with a user-facing
// message, so callers never branch on raw status codes or error strings.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// SellerProfile mirrors the backend's seller fields.
type SellerProfile struct {
	ShopName     string `json:"shop_name"`
	BusinessName string `json:"business_name"`
	ContactPhone string `json:"contact_phone"`
}

// Address mirrors one backend address book entry.
type Address struct {
	Label   string `json:"label"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Profile is the backend's view of the current account.
type Profile struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	DisplayName      string        `json:"display_name"`
	IsSeller         bool          `json:"is_seller"`
	SellerModeActive bool          `json:"seller_mode_active"`
	Seller           SellerProfile `json:"seller"`
	Addresses        []Address     `json:"addresses"`
	ProfileComplete  bool          `json:"profile_complete"`
}

// LoginResult bundles the tokens and profile returned by a successful login.
type LoginResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
	Profile      Profile `json:"user"`
}

// Client talks to the backend REST surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL, e.g.
// "https://api.example.com/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithHTTP builds a client over a caller-provided http.Client,
// used by tests and by hosts that need custom transports.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Login exchanges credentials for tokens and a profile. Input problems are
// resolved locally as validation errors and never reach the network.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if !strings.Contains(email, "@") {
		return LoginResult{}, validationError("Enter a valid email address.")
	}
	if password == "" {
		return LoginResult{}, validationError("Enter your password.")
	}

	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out, map[int]string{
		http.StatusUnauthorized: "Invalid email or password",
	})
	if err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// UserDetails is the token exchange: it resolves a stored bearer token into
// the current profile, or an auth error when the token is no longer valid.
func (c *Client) UserDetails(ctx context.Context, token string) (Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/user-details", token, nil, &out, nil); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// SwitchRole toggles the account between buyer and seller mode.
func (c *Client) SwitchRole(ctx context.Context, token string, seller bool, profile SellerProfile) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodPut, "/switch-role", token, map[string]any{
		"seller":         seller,
		"seller_profile": profile,
	}, &out, nil)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// UpdateProfile submits the editable profile fields and returns the fresh profile.
func (c *Client) UpdateProfile(ctx context.Context, token, displayName string, seller SellerProfile) (Profile, error) {
	if strings.TrimSpace(displayName) == "" {
		return Profile{}, validationError("Display name must not be empty.")
	}
	var out Profile
	err := c.do(ctx, http.MethodPut, "/profile", token, map[string]any{
		"display_name": displayName,
		"seller":       seller,
	}, &out, nil)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// ReplaceAddresses overwrites the address book wholesale.
func (c *Client) ReplaceAddresses(ctx context.Context, token string, addresses []Address) (Profile, error) {
	for _, a := range addresses {
		if a.Line1 == "" || a.City == "" {
			return Profile{}, validationError("Each address needs a street line and a city.")
		}
	}
	var out Profile
	err := c.do(ctx, http.MethodPut, "/addresses", token, map[string]any{
		"addresses": addresses,
	}, &out, nil)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// RequestPasswordReset starts the reset flow for an email address.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if !strings.Contains(email, "@") {
		return validationError("Enter a valid email address.")
	}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email": email,
	}, nil, nil)
}

// ConfirmPasswordReset completes the reset flow with the delivered code.
func (c *Client) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return validationError("Password must be at least 8 characters.")
	}
	return c.do(ctx, http.MethodPost, "/auth/reset-password/confirm", "", map[string]string{
		"email":        email,
		"code":         code,
		"new_password": newPassword,
	}, nil, map[int]string{
		http.StatusUnauthorized: "That reset code is invalid or has expired.",
	})
}

// do performs one JSON round trip. messageOverrides substitutes the
// user-facing message for specific statuses, e.g. 401 on login.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, messageOverrides map[int]string) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return validationError(msgValidation)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindServer, Message: msgServer, cause: err}
		}
		return nil
	}

	restErr := statusError(resp.StatusCode)
	if msg, ok := messageOverrides[resp.StatusCode]; ok {
		restErr.Message = msg
	}
	return restErr
}
