package chat

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu            sync.RWMutex
	messages      map[string][]Message // keyed by conversation id
	conversations map[string]Conversation
}

// NewMemoryRepository builds an in-memory chat store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		messages:      make(map[string][]Message),
		conversations: make(map[string]Conversation),
	}
}

func (r *memoryRepository) SaveMessage(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *memoryRepository) Messages(_ context.Context, conversationID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Message(nil), r.messages[conversationID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) SaveConversation(_ context.Context, conv Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := conv
	copied.Participants = append([]string(nil), conv.Participants...)
	copied.Unread = make(map[string]int, len(conv.Unread))
	for k, v := range conv.Unread {
		copied.Unread[k] = v
	}
	r.conversations[conv.ID] = copied
	return nil
}

func (r *memoryRepository) Conversation(_ context.Context, id string) (Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (r *memoryRepository) ListByParticipant(_ context.Context, userID string) ([]Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Conversation
	for _, conv := range r.conversations {
		for _, p := range conv.Participants {
			if p == userID {
				out = append(out, conv)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}
