package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/identity"
)

// Handler exposes auth endpoints: login, refresh, logout, password reset,
// user details and role switch.
type Handler struct {
	ids *identity.Service
	svc *Service
}

// NewHandler constructs an auth handler.
func NewHandler(ids *identity.Service, svc *Service) *Handler {
	return &Handler{ids: ids, svc: svc}
}

// UserPayload is the wire shape of an account, shared by every endpoint that
// returns the current user.
func UserPayload(user identity.User) fiber.Map {
	addresses := user.Addresses
	if addresses == nil {
		addresses = []identity.Address{}
	}
	return fiber.Map{
		"id":                 user.ID,
		"email":              user.Email,
		"display_name":       user.DisplayName,
		"is_seller":          user.IsSeller,
		"seller_mode_active": user.SellerModeActive,
		"seller":             user.Seller,
		"addresses":          addresses,
		"profile_complete":   user.ProfileComplete(),
		"created_at":         user.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a token pair plus the profile, so
// clients can seed their session without a second round trip.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "Invalid email or password")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"user":          UserPayload(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}

// Logout invalidates existing tokens by bumping the token version.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestReset starts the password reset flow. Always 202: the response never
// reveals whether the email exists.
func (h *Handler) RequestReset(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusUnprocessableEntity, "email is required")
	}
	if err := h.svc.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not start password reset")
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "reset_requested"})
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset completes the password reset flow.
func (h *Handler) ConfirmReset(c *fiber.Ctx) error {
	var req confirmResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ConfirmPasswordReset(c.UserContext(), req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, ErrResetCodeInvalid) {
			return fiber.NewError(http.StatusUnauthorized, "reset code invalid or expired")
		}
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "password_updated"})
}

// UserDetails is the token exchange clients use to resolve their session: it
// turns a valid bearer token into the current profile.
func (h *Handler) UserDetails(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	user, err := h.ids.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	return c.Status(http.StatusOK).JSON(UserPayload(user))
}

type switchRoleRequest struct {
	Seller        bool                   `json:"seller"`
	SellerProfile identity.SellerProfile `json:"seller_profile"`
}

// SwitchRole toggles the caller between buyer and seller mode.
func (h *Handler) SwitchRole(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req switchRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.SwitchRole(c.UserContext(), uid, req.Seller, req.SellerProfile)
	if err != nil {
		if errors.Is(err, identity.ErrSellerProfileRequired) {
			return fiber.NewError(http.StatusUnprocessableEntity, "seller profile with a shop name is required")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(UserPayload(user))
}
