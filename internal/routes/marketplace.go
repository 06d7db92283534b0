package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/chat"
	"github.com/sokoni/sokoni/internal/inquiries"
	"github.com/sokoni/sokoni/internal/notifications"
	"github.com/sokoni/sokoni/internal/orders"
)

// RegisterOrderRoutes wires order endpoints. Placement optionally runs behind
// the idempotency middleware so a retried checkout cannot double-order.
func RegisterOrderRoutes(r fiber.Router, h *orders.Handler, idem fiber.Handler) {
	group := r.Group("/orders")
	if idem != nil {
		group.Post("/", idem, h.Place)
	} else {
		group.Post("/", h.Place)
	}
	group.Get("/buying", h.ListBuying)
	group.Get("/selling", h.ListSelling)
	group.Put("/:id/status", h.Transition)
}

// RegisterNotificationRoutes wires notification endpoints.
func RegisterNotificationRoutes(r fiber.Router, h *notifications.Handler) {
	group := r.Group("/notifications")
	group.Get("/", h.List)
	group.Post("/read-all", h.MarkAllRead)
}

// RegisterInquiryRoutes wires inquiry endpoints.
func RegisterInquiryRoutes(r fiber.Router, h *inquiries.Handler) {
	group := r.Group("/inquiries")
	group.Post("/", h.Create)
	group.Get("/buying", h.ListBuying)
	group.Get("/selling", h.ListSelling)
	group.Post("/:id/answer", h.Answer)
}

// RegisterChatRoutes wires conversation endpoints.
func RegisterChatRoutes(r fiber.Router, h *chat.Handler) {
	group := r.Group("/chat")
	group.Post("/messages", h.Send)
	group.Get("/conversations", h.Conversations)
	group.Get("/conversations/:peer/messages", h.Messages)
	group.Post("/conversations/:peer/read", h.MarkRead)
}
