package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string][]Notification // keyed by user id
}

// NewMemoryRepository builds an in-memory notification store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string][]Notification)}
}

func (r *memoryRepository) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.UserID] = append(r.items[n.UserID], n)
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Notification(nil), r.items[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	list := r.items[userID]
	for i := range list {
		if list[i].ReadAt == nil {
			ts := at
			list[i].ReadAt = &ts
			changed++
		}
	}
	r.items[userID] = list
	return changed, nil
}
