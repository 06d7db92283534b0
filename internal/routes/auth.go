package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/auth"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Post("/reset-password", h.RequestReset)
	group.Post("/reset-password/confirm", h.ConfirmReset)
}

// RegisterAuthProtectedRoutes wires the bearer-authenticated session endpoints.
// /user-details is the token exchange mobile clients resolve their session
// with on every cold start.
func RegisterAuthProtectedRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/user-details", h.UserDetails)
	r.Put("/switch-role", h.SwitchRole)
}
