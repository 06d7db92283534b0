// Package sync binds a local collection to a server-fed stream of snapshots.
// One generic primitive covers orders, notifications, inquiries and chat:
// each snapshot replaces the whole collection, so the local copy can never
// drift from the server's.
package sync

import (
	"context"
	"io"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"
)

// Subscription delivers whole-collection snapshots until closed.
type Subscription[T any] interface {
	// Snapshots yields full replacement lists. The channel closes when the
	// subscription ends.
	Snapshots() <-chan []T
	// Err reports the terminal error, if any, after Snapshots closes.
	Err() error
	Close()
}

// Source opens snapshot subscriptions for an owner key.
type Source[T any] interface {
	Subscribe(ctx context.Context, owner string) (Subscription[T], error)
}

// Options tunes a Binding.
type Options[T any] struct {
	// Less orders the collection after every snapshot. Nil keeps server order.
	Less func(a, b T) bool

	// Unread, MarkRead and Delay together implement batched read receipts.
	// When a snapshot contains at least one item for which Unread returns
	// true, MarkRead fires once after Delay. It fires at most once per bind:
	// a screen left open does not re-send receipts for every later message.
	Unread   func(T) bool
	MarkRead func(ctx context.Context, owner string) error
	Delay    time.Duration
}

// Binding maintains the live local copy of one owner's collection.
type Binding[T any] struct {
	source Source[T]
	opts   Options[T]
	logger *slog.Logger

	mu         stdsync.Mutex
	owner      string
	items      []T
	loading    bool
	refreshing bool
	lastErr    error
	gen        int
	cancel     context.CancelFunc
	readTimer  *time.Timer
	readFired  bool
	observers  map[int]func()
	nextObs    int
	closed     bool
}

// NewBinding builds an unbound Binding. Call Rebind to attach an owner.
func NewBinding[T any](source Source[T], opts Options[T], logger *slog.Logger) *Binding[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Binding[T]{
		source:    source,
		opts:      opts,
		logger:    logger,
		observers: make(map[int]func()),
	}
}

// Items returns a copy of the current collection.
func (b *Binding[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Loading reports whether the first snapshot for the current owner is still
// pending. Refreshing reports a reconnect while stale data is shown.
func (b *Binding[T]) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Binding[T]) Refreshing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshing
}

// Err returns the most recent stream error. A newer snapshot clears it.
func (b *Binding[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Subscribe registers a change callback fired after every state change.
// The returned func removes it.
func (b *Binding[T]) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.observers, id)
		b.mu.Unlock()
	}
}

// Rebind tears down the current subscription and opens a new one for owner.
// Items from the previous owner are dropped immediately so nothing from one
// account ever shows under another.
func (b *Binding[T]) Rebind(ctx context.Context, owner string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.teardownLocked()
	b.owner = owner
	b.items = nil
	b.loading = true
	b.refreshing = false
	b.lastErr = nil
	b.readFired = false
	b.gen++
	gen := b.gen

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	b.notify()
	go b.run(runCtx, gen, owner)
}

// Close ends the subscription and silences the binding. Safe to call twice.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.teardownLocked()
	b.mu.Unlock()
}

func (b *Binding[T]) teardownLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.readTimer != nil {
		b.readTimer.Stop()
		b.readTimer = nil
	}
}

func (b *Binding[T]) run(ctx context.Context, gen int, owner string) {
	sub, err := b.source.Subscribe(ctx, owner)
	if err != nil {
		b.fail(gen, err)
		return
	}
	defer sub.Close()

	for snapshot := range sub.Snapshots() {
		b.apply(ctx, gen, owner, snapshot)
	}
	if err := sub.Err(); err != nil && ctx.Err() == nil {
		b.fail(gen, err)
	}
}

// apply replaces the collection with the snapshot. Local state is never
// patched item by item.
func (b *Binding[T]) apply(ctx context.Context, gen int, owner string, snapshot []T) {
	items := make([]T, len(snapshot))
	copy(items, snapshot)
	if b.opts.Less != nil {
		sort.SliceStable(items, func(i, j int) bool { return b.opts.Less(items[i], items[j]) })
	}

	b.mu.Lock()
	if gen != b.gen || b.closed {
		b.mu.Unlock()
		return
	}
	b.items = items
	b.loading = false
	b.refreshing = false
	b.lastErr = nil
	b.scheduleMarkReadLocked(ctx, owner, items)
	b.mu.Unlock()

	b.notify()
}

// scheduleMarkReadLocked arms the one-shot read receipt when the snapshot
// holds unread items. An all-read snapshot never issues a batch.
func (b *Binding[T]) scheduleMarkReadLocked(ctx context.Context, owner string, items []T) {
	if b.opts.Unread == nil || b.opts.MarkRead == nil || b.readFired || b.readTimer != nil {
		return
	}
	any := false
	for _, it := range items {
		if b.opts.Unread(it) {
			any = true
			break
		}
	}
	if !any {
		return
	}
	gen := b.gen
	b.readTimer = time.AfterFunc(b.opts.Delay, func() {
		b.mu.Lock()
		if gen != b.gen || b.closed {
			b.mu.Unlock()
			return
		}
		b.readTimer = nil
		b.readFired = true
		b.mu.Unlock()

		if err := b.opts.MarkRead(ctx, owner); err != nil {
			b.logger.Warn("mark read failed", "owner", owner, "error", err)
		}
	})
}

// fail records the error but keeps the last known good collection.
func (b *Binding[T]) fail(gen int, err error) {
	b.mu.Lock()
	if gen != b.gen || b.closed {
		b.mu.Unlock()
		return
	}
	b.lastErr = err
	b.loading = false
	b.refreshing = len(b.items) > 0
	b.mu.Unlock()

	b.logger.Warn("stream failed", "error", err)
	b.notify()
}

func (b *Binding[T]) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.observers))
	for _, fn := range b.observers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
