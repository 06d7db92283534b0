package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sokoni/sokoni/internal/feed"
	"github.com/sokoni/sokoni/internal/notifications"
	"github.com/sokoni/sokoni/internal/notify"
)

var (
	// ErrInvalidTransition indicates the requested status change is not legal
	// from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotParticipant indicates the caller is neither buyer nor seller.
	ErrNotParticipant = errors.New("not a participant of this order")
	// ErrNotPermitted indicates the caller's side may not request this transition.
	ErrNotPermitted = errors.New("transition not permitted for this party")
)

// Service manages the order lifecycle.
type Service struct {
	repo       Repository
	notifs     *notifications.Service
	bus        *feed.Bus
	visibility time.Duration
}

// NewService creates an order service. visibility bounds how long terminal
// orders stay listed.
func NewService(repo Repository, notifs *notifications.Service, bus *feed.Bus, visibility time.Duration) *Service {
	return &Service{repo: repo, notifs: notifs, bus: bus, visibility: visibility}
}

// PlaceInput captures a new purchase.
type PlaceInput struct {
	BuyerID   string
	SellerID  string
	ProductID string
	Title     string
	Quantity  int
	UnitPrice int64
}

// Place records a pending order and announces it to the seller.
func (s *Service) Place(ctx context.Context, input PlaceInput) (Order, error) {
	if input.BuyerID == "" || input.SellerID == "" {
		return Order{}, errors.New("buyer and seller are required")
	}
	if input.BuyerID == input.SellerID {
		return Order{}, errors.New("cannot order from yourself")
	}
	if input.Quantity <= 0 {
		return Order{}, errors.New("quantity must be positive")
	}
	if input.UnitPrice <= 0 {
		return Order{}, errors.New("unit price must be positive")
	}

	now := time.Now().UTC()
	order := Order{
		ID:        uuid.New().String(),
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		ProductID: input.ProductID,
		Title:     input.Title,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, err
	}

	s.announce(ctx, order, input.SellerID, fmt.Sprintf("New order: %s ×%d", order.Title, order.Quantity))
	s.bus.Publish(ctx, feed.KindOrders, order.BuyerID)

	return order, nil
}

// Transition applies a requested status change after validating both the
// transition graph and which side may request it: the seller drives
// confirmed/shipped, the buyer acknowledges delivery, and either side may
// cancel while cancellation is still legal.
func (s *Service) Transition(ctx context.Context, orderID, actorID string, to Status) (Order, error) {
	if !to.Valid() || to == StatusPending {
		return Order{}, ErrInvalidTransition
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if actorID != order.BuyerID && actorID != order.SellerID {
		return Order{}, ErrNotParticipant
	}
	if !CanTransition(order.Status, to) {
		return Order{}, ErrInvalidTransition
	}

	switch to {
	case StatusConfirmed, StatusShipped:
		if actorID != order.SellerID {
			return Order{}, ErrNotPermitted
		}
	case StatusDelivered:
		if actorID != order.BuyerID {
			return Order{}, ErrNotPermitted
		}
	case StatusCancelled:
		// either participant
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, orderID, to, now); err != nil {
		return Order{}, err
	}
	order.Status = to
	order.UpdatedAt = now

	counterpart := order.BuyerID
	if actorID == order.BuyerID {
		counterpart = order.SellerID
	}
	s.announce(ctx, order, counterpart, fmt.Sprintf("Order %q is now %s", order.Title, to))
	s.bus.Publish(ctx, feed.KindOrders, actorID)

	return order, nil
}

// ListForBuyer returns the buyer's visible orders most-recent-first.
func (s *Service) ListForBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	list, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.visible(list), nil
}

// ListForSeller returns the seller's visible orders most-recent-first.
func (s *Service) ListForSeller(ctx context.Context, sellerID string) ([]Order, error) {
	list, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return s.visible(list), nil
}

// visible drops terminal orders whose last update fell out of the visibility
// window. Active orders are always listed regardless of age.
func (s *Service) visible(list []Order) []Order {
	if s.visibility <= 0 {
		return list
	}
	cutoff := time.Now().UTC().Add(-s.visibility)
	out := list[:0]
	for _, o := range list {
		if o.Status.Terminal() && o.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (s *Service) announce(ctx context.Context, order Order, userID, body string) {
	if s.notifs != nil {
		_, _ = s.notifs.Push(ctx, notifications.PushInput{
			UserID: userID,
			Kind:   notify.KindOrderStatus,
			Title:  "Order update",
			Body:   body,
		})
	}
	s.bus.Publish(ctx, feed.KindOrders, userID)
}
