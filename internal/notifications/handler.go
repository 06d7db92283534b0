package notifications

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes notification endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the caller's notifications most-recent-first.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	items, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []Notification{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"notifications": items})
}

// MarkAllRead batches the unread-to-read transition for the caller.
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	changed, err := h.service.MarkAllRead(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"marked_read": changed})
}
