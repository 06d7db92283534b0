package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	heartbeatInterval = 25 * time.Second
	snapshotTimeout   = 5 * time.Second
)

// SnapshotFunc fetches the full current collection for an owner. The stream
// never patches: every change event triggers a complete re-fetch.
type SnapshotFunc func(ctx context.Context, ownerID string) (any, error)

// OwnerFunc resolves the subscription owner key from the request, typically
// the authenticated user id or a derived conversation id.
type OwnerFunc func(c *fiber.Ctx) (string, error)

// StreamHandler returns a fiber handler that serves a server-sent-event stream
// for one collection kind. On connect it emits the current snapshot, then
// re-emits a fresh snapshot for every bus event on the owner's channel.
func StreamHandler(bus *Bus, kind Kind, owner OwnerFunc, snapshot SnapshotFunc, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := owner(c)
		if err != nil {
			return err
		}
		if ownerID == "" {
			return fiber.NewError(http.StatusBadRequest, "owner is required")
		}

		// The subscription must outlive the handler: fiber recycles the
		// request context once the stream writer takes over.
		events, stop, err := bus.Subscribe(context.Background(), kind, ownerID)
		if err != nil {
			return fiber.NewError(http.StatusServiceUnavailable, "live updates unavailable")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer stop()

			if !writeSnapshot(w, snapshot, ownerID, logger) {
				return
			}

			heartbeat := time.NewTicker(heartbeatInterval)
			defer heartbeat.Stop()

			for {
				select {
				case _, ok := <-events:
					if !ok {
						return
					}
					if !writeSnapshot(w, snapshot, ownerID, logger) {
						return
					}
				case <-heartbeat.C:
					if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))

		return nil
	}
}

// writeSnapshot fetches and flushes one snapshot frame. It reports false when
// the client went away or the fetch failed, either of which ends the stream;
// clients fall back to their last-known-good list and reconnect.
func writeSnapshot(w *bufio.Writer, fetch SnapshotFunc, ownerID string, logger *slog.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	items, err := fetch(ctx, ownerID)
	if err != nil {
		if logger != nil {
			logger.Warn("stream snapshot fetch failed", "owner_id", ownerID, "error", err)
		}
		return false
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return false
	}

	if _, err := w.WriteString("event: snapshot\ndata: " + string(payload) + "\n\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}
