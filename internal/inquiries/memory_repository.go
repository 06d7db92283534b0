package inquiries

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Inquiry
}

// NewMemoryRepository builds an in-memory inquiry store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Inquiry)}
}

func (r *memoryRepository) Create(_ context.Context, q Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[q.ID] = q
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return Inquiry{}, ErrNotFound
	}
	return q, nil
}

func (r *memoryRepository) SetAnswer(_ context.Context, id, answer string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	q.Answer = answer
	q.Status = StatusAnswered
	ts := at
	q.AnsweredAt = &ts
	r.items[id] = q
	return nil
}

func (r *memoryRepository) ListByBuyer(_ context.Context, buyerID string) ([]Inquiry, error) {
	return r.filter(func(q Inquiry) bool { return q.BuyerID == buyerID }), nil
}

func (r *memoryRepository) ListBySeller(_ context.Context, sellerID string) ([]Inquiry, error) {
	return r.filter(func(q Inquiry) bool { return q.SellerID == sellerID }), nil
}

func (r *memoryRepository) filter(keep func(Inquiry) bool) []Inquiry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Inquiry
	for _, q := range r.items {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
