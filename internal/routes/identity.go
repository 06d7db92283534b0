package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/auth"
	"github.com/sokoni/sokoni/internal/identity"
)

// RegisterIdentityRoutes wires public account registration.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"display_name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(http.StatusCreated).JSON(auth.UserPayload(user))
	})
}

// RegisterProfileRoutes wires the authenticated profile endpoints.
func RegisterProfileRoutes(r fiber.Router, ids *identity.Service) {
	r.Put("/profile", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			DisplayName string                 `json:"display_name"`
			Seller      identity.SellerProfile `json:"seller"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.UpdateProfile(c.UserContext(), uid, identity.ProfileInput{
			DisplayName: req.DisplayName,
			Seller:      req.Seller,
		})
		if err != nil {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(http.StatusOK).JSON(auth.UserPayload(user))
	})

	// The address book is replaced wholesale, never patched.
	r.Put("/addresses", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			Addresses []identity.Address `json:"addresses"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.ReplaceAddresses(c.UserContext(), uid, req.Addresses)
		if err != nil {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(http.StatusOK).JSON(auth.UserPayload(user))
	})
}
