package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sokoni/sokoni/internal/chat"
	"github.com/sokoni/sokoni/internal/feed"
	"github.com/sokoni/sokoni/internal/inquiries"
	"github.com/sokoni/sokoni/internal/notifications"
	"github.com/sokoni/sokoni/internal/orders"
)

// RegisterStreamRoutes wires the server-sent-event endpoints that push full
// collection snapshots to subscribed clients.
func RegisterStreamRoutes(r fiber.Router, bus *feed.Bus, orderSvc *orders.Service,
	notifSvc *notifications.Service, inquirySvc *inquiries.Service, chatSvc *chat.Service,
	logger *slog.Logger) {

	ownerSelf := func(c *fiber.Ctx) (string, error) {
		uid, _ := c.Locals("user_id").(string)
		return uid, nil
	}

	// Snapshots are flat lists so clients can bind them directly. The base
	// path serves the buyer view; /selling serves the seller view.
	r.Get("/stream/orders", feed.StreamHandler(bus, feed.KindOrders, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return orderSvc.ListForBuyer(ctx, ownerID)
		}, logger))
	r.Get("/stream/orders/selling", feed.StreamHandler(bus, feed.KindOrders, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return orderSvc.ListForSeller(ctx, ownerID)
		}, logger))

	r.Get("/stream/notifications", feed.StreamHandler(bus, feed.KindNotifications, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return notifSvc.List(ctx, ownerID)
		}, logger))

	r.Get("/stream/inquiries", feed.StreamHandler(bus, feed.KindInquiries, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return inquirySvc.ListForBuyer(ctx, ownerID)
		}, logger))
	r.Get("/stream/inquiries/selling", feed.StreamHandler(bus, feed.KindInquiries, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return inquirySvc.ListForSeller(ctx, ownerID)
		}, logger))

	// Conversation list stream, keyed by the caller's user id.
	r.Get("/stream/conversations", feed.StreamHandler(bus, feed.KindChat, ownerSelf,
		func(ctx context.Context, ownerID string) (any, error) {
			return chatSvc.ListConversations(ctx, ownerID)
		}, logger))

	// Message stream, keyed by the derived conversation id so both
	// participants address the same channel.
	ownerConversation := func(c *fiber.Ctx) (string, error) {
		uid, _ := c.Locals("user_id").(string)
		peer := c.Query("peer")
		if peer == "" {
			return "", fiber.NewError(http.StatusBadRequest, "peer query parameter is required")
		}
		return chat.ConversationID(uid, peer), nil
	}
	r.Get("/stream/chat", feed.StreamHandler(bus, feed.KindChat, ownerConversation,
		func(ctx context.Context, ownerID string) (any, error) {
			return chatSvc.MessagesIn(ctx, ownerID)
		}, logger))
}
