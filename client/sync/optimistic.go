package sync

import stdsync "sync"

// SendState tags a locally-originated item's delivery state.
type SendState int

const (
	// Pending means the write was issued but the server has not confirmed it.
	Pending SendState = iota
	// Confirmed means the item came back in a server snapshot.
	Confirmed
	// Failed means the write errored. Failed entries stay visible until
	// explicitly discarded; they are never silently dropped.
	Failed
)

func (s SendState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "invalid"
}

// Entry is one item in the overlaid view, carrying its delivery state.
type Entry[T any] struct {
	Item  T
	State SendState
	Err   error
}

// Outbox overlays optimistic local writes on server snapshots: a sent chat
// message appears immediately as Pending and resolves to Confirmed when a
// snapshot contains it, or to Failed when the write's error comes back.
type Outbox[T any] struct {
	// match reports whether a server item is the confirmation of a local one.
	match func(local, remote T) bool

	mu      stdsync.Mutex
	nextID  int
	pending map[int]*Entry[T]
	order   []int
}

// NewOutbox builds an outbox. match identifies a pending item in a snapshot,
// typically by client-generated id.
func NewOutbox[T any](match func(local, remote T) bool) *Outbox[T] {
	return &Outbox[T]{match: match, pending: make(map[int]*Entry[T])}
}

// Add registers a pending local write and returns its handle.
func (o *Outbox[T]) Add(item T) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.pending[id] = &Entry[T]{Item: item, State: Pending}
	o.order = append(o.order, id)
	return id
}

// Fail marks a pending write as failed with its error. Unknown or already
// resolved handles are ignored.
func (o *Outbox[T]) Fail(id int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.pending[id]; ok && e.State == Pending {
		e.State = Failed
		e.Err = err
	}
}

// Discard removes a local entry, typically a Failed one the user dismissed
// or chose to retry as a fresh write.
func (o *Outbox[T]) Discard(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, id)
	for i, oid := range o.order {
		if oid == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Overlay merges a server snapshot with the local writes: snapshot items come
// first as Confirmed, followed by unresolved locals in send order. Pending
// items found in the snapshot are resolved and dropped from the outbox, since
// the server copy now represents them.
func (o *Outbox[T]) Overlay(snapshot []T) []Entry[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Entry[T], 0, len(snapshot)+len(o.order))
	for _, item := range snapshot {
		out = append(out, Entry[T]{Item: item, State: Confirmed})
	}

	kept := o.order[:0]
	for _, id := range o.order {
		e, ok := o.pending[id]
		if !ok {
			continue
		}
		if e.State == Pending && o.contains(snapshot, e.Item) {
			delete(o.pending, id)
			continue
		}
		kept = append(kept, id)
		out = append(out, *e)
	}
	o.order = kept
	return out
}

func (o *Outbox[T]) contains(snapshot []T, local T) bool {
	for _, remote := range snapshot {
		if o.match(local, remote) {
			return true
		}
	}
	return false
}
