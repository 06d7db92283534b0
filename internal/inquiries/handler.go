package inquiries

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes inquiry endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an inquiry handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	SellerID  string `json:"seller_id"`
	ProductID string `json:"product_id"`
	Question  string `json:"question"`
}

// Create posts a buyer question to a seller.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	q, err := h.service.Create(c.UserContext(), CreateInput{
		BuyerID:   uid,
		SellerID:  req.SellerID,
		ProductID: req.ProductID,
		Question:  req.Question,
	})
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(q)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// Answer records the seller's reply.
func (h *Handler) Answer(c *fiber.Ctx) error {
	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	q, err := h.service.Answer(c.UserContext(), c.Params("id"), uid, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "inquiry not found")
		case errors.Is(err, ErrNotSeller):
			return fiber.NewError(http.StatusForbidden, "only the seller can answer")
		case errors.Is(err, ErrAlreadyAnswered):
			return fiber.NewError(http.StatusConflict, "inquiry already answered")
		default:
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(q)
}

// ListBuying returns inquiries the caller asked.
func (h *Handler) ListBuying(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.ListForBuyer(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Inquiry{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"inquiries": list})
}

// ListSelling returns inquiries addressed to the caller.
func (h *Handler) ListSelling(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.ListForSeller(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Inquiry{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"inquiries": list})
}
