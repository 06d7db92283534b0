package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind identifies a live collection a client can subscribe to.
type Kind string

const (
	KindOrders        Kind = "orders"
	KindNotifications Kind = "notifications"
	KindInquiries     Kind = "inquiries"
	KindChat          Kind = "chat"
)

// Valid reports whether the kind names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindOrders, KindNotifications, KindInquiries, KindChat:
		return true
	}
	return false
}

// Event signals that the collection scoped to (Kind, OwnerID) changed. Events
// carry no payload: consumers re-fetch the full snapshot on every event.
type Event struct {
	Kind    Kind      `json:"kind"`
	OwnerID string    `json:"owner_id"`
	At      time.Time `json:"at"`
}

// Bus publishes and subscribes to collection change events over Redis pub/sub.
// Events within a single (kind, owner) channel arrive in publish order; no
// ordering is guaranteed across channels.
type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBus builds a bus over the provided Redis client. A nil client yields a
// bus whose publishes are dropped, matching how the rest of the app degrades
// when Redis is absent in development.
func NewBus(client *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

func channelName(kind Kind, ownerID string) string {
	return fmt.Sprintf("feed:%s:%s", kind, ownerID)
}

// Publish emits a change event for the (kind, owner) collection. Publishing is
// best effort: a delivery failure is logged, never propagated, because the
// underlying write already succeeded.
func (b *Bus) Publish(ctx context.Context, kind Kind, ownerID string) {
	if b == nil || b.client == nil || ownerID == "" {
		return
	}
	payload, err := json.Marshal(Event{Kind: kind, OwnerID: ownerID, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, channelName(kind, ownerID), payload).Err(); err != nil && b.logger != nil {
		b.logger.Warn("feed publish failed", "kind", string(kind), "owner_id", ownerID, "error", err)
	}
}

// Subscribe opens a live event channel for (kind, owner). The returned stop
// function releases the underlying pub/sub connection; callers must invoke it
// exactly once when done, or the listener leaks.
func (b *Bus) Subscribe(ctx context.Context, kind Kind, ownerID string) (<-chan Event, func(), error) {
	if b == nil || b.client == nil {
		return nil, nil, fmt.Errorf("feed bus unavailable")
	}

	pubsub := b.client.Subscribe(ctx, channelName(kind, ownerID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", channelName(kind, ownerID), err)
	}

	events := make(chan Event, 8)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			default:
				// Slow consumer: drop the event. The next delivered event
				// still triggers a full snapshot re-fetch, so nothing is lost.
			}
		}
	}()

	stop := func() { _ = pubsub.Close() }
	return events, stop, nil
}
