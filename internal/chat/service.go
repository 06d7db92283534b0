package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sokoni/sokoni/internal/feed"
	"github.com/sokoni/sokoni/internal/notifications"
	"github.com/sokoni/sokoni/internal/notify"
)

// Service manages conversations and message delivery.
type Service struct {
	repo   Repository
	notifs *notifications.Service
	bus    *feed.Bus
}

// NewService creates a chat service.
func NewService(repo Repository, notifs *notifications.Service, bus *feed.Bus) *Service {
	return &Service{repo: repo, notifs: notifs, bus: bus}
}

// SendInput captures one outbound message. ClientID is optional and opaque;
// it is echoed back verbatim.
type SendInput struct {
	SenderID    string
	RecipientID string
	Text        string
	ClientID    string
}

// Send appends a message, updates the conversation header and unread counter
// for the recipient, and signals both the conversation channel and the
// recipient's conversation list.
func (s *Service) Send(ctx context.Context, input SendInput) (Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return Message{}, errors.New("message text must not be empty")
	}
	if input.SenderID == "" || input.RecipientID == "" || input.SenderID == input.RecipientID {
		return Message{}, errors.New("sender and recipient must be two distinct users")
	}

	convID := ConversationID(input.SenderID, input.RecipientID)
	now := time.Now().UTC()

	msg := Message{
		ID:             uuid.New().String(),
		ClientID:       input.ClientID,
		ConversationID: convID,
		SenderID:       input.SenderID,
		Text:           text,
		CreatedAt:      now,
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return Message{}, err
	}

	conv, err := s.repo.Conversation(ctx, convID)
	if errors.Is(err, ErrNotFound) {
		a, b := input.SenderID, input.RecipientID
		if strings.Compare(a, b) > 0 {
			a, b = b, a
		}
		conv = Conversation{
			ID:           convID,
			Participants: []string{a, b},
			Unread:       map[string]int{},
			CreatedAt:    now,
		}
	} else if err != nil {
		return Message{}, err
	}

	conv.LastMessage = text
	conv.LastMessageAt = now
	if conv.Unread == nil {
		conv.Unread = map[string]int{}
	}
	conv.Unread[input.RecipientID]++
	if err := s.repo.SaveConversation(ctx, conv); err != nil {
		return Message{}, err
	}

	if s.notifs != nil {
		_, _ = s.notifs.Push(ctx, notifications.PushInput{
			UserID: input.RecipientID,
			Kind:   notify.KindChatMessage,
			Title:  "New message",
			Body:   text,
		})
	}
	// The message stream is keyed by conversation id; the conversation lists
	// of both participants are keyed by user id. All three views must refresh.
	s.bus.Publish(ctx, feed.KindChat, convID)
	s.bus.Publish(ctx, feed.KindChat, input.SenderID)
	s.bus.Publish(ctx, feed.KindChat, input.RecipientID)

	return msg, nil
}

// Messages returns the conversation between the caller and a peer, oldest
// message first.
func (s *Service) Messages(ctx context.Context, userID, peerID string) ([]Message, error) {
	return s.repo.Messages(ctx, ConversationID(userID, peerID))
}

// MessagesIn returns a conversation's messages by derived conversation id.
// The live stream is keyed by conversation id, so its snapshots resolve here.
func (s *Service) MessagesIn(ctx context.Context, conversationID string) ([]Message, error) {
	return s.repo.Messages(ctx, conversationID)
}

// MarkRead zeroes the caller's unread counter for the conversation with peer.
func (s *Service) MarkRead(ctx context.Context, userID, peerID string) error {
	convID := ConversationID(userID, peerID)
	conv, err := s.repo.Conversation(ctx, convID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if conv.Unread[userID] == 0 {
		return nil
	}
	conv.Unread[userID] = 0
	if err := s.repo.SaveConversation(ctx, conv); err != nil {
		return err
	}
	s.bus.Publish(ctx, feed.KindChat, convID)
	s.bus.Publish(ctx, feed.KindChat, userID)
	return nil
}

// ListConversations returns the caller's conversations latest-activity-first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	return s.repo.ListByParticipant(ctx, userID)
}
