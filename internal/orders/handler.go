package orders

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes order endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type placeRequest struct {
	SellerID  string `json:"seller_id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Place creates a pending order for the authenticated buyer.
func (h *Handler) Place(c *fiber.Ctx) error {
	var req placeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	order, err := h.service.Place(c.UserContext(), PlaceInput{
		BuyerID:   uid,
		SellerID:  req.SellerID,
		ProductID: req.ProductID,
		Title:     req.Title,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(order)
}

type transitionRequest struct {
	Status Status `json:"status"`
}

// Transition requests a status change on behalf of the caller.
func (h *Handler) Transition(c *fiber.Ctx) error {
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	order, err := h.service.Transition(c.UserContext(), c.Params("id"), uid, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "order not found")
		case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotPermitted):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return fiber.NewError(http.StatusUnprocessableEntity, "invalid status transition")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(order)
}

// ListBuying returns the caller's purchases.
func (h *Handler) ListBuying(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.ListForBuyer(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Order{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"orders": list})
}

// ListSelling returns the caller's sales.
func (h *Handler) ListSelling(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	list, err := h.service.ListForSeller(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []Order{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"orders": list})
}
