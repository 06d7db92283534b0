package chat

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes chat endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a chat handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendRequest struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
	ClientID    string `json:"client_id"`
}

// Send delivers a message from the caller to a peer.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	msg, err := h.service.Send(c.UserContext(), SendInput{
		SenderID:    uid,
		RecipientID: req.RecipientID,
		Text:        req.Text,
		ClientID:    req.ClientID,
	})
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

// Messages returns the conversation with the peer named in the path.
func (h *Handler) Messages(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.Messages(c.UserContext(), uid, c.Params("peer"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Message{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"messages": list})
}

// MarkRead zeroes the caller's unread counter for the peer conversation.
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if err := h.service.MarkRead(c.UserContext(), uid, c.Params("peer")); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "read"})
}

// Conversations lists the caller's conversations latest-activity-first.
func (h *Handler) Conversations(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.ListConversations(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Conversation{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"conversations": list})
}
