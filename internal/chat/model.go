package chat

import (
	"strings"
	"time"
)

// ConversationID derives the shared channel key for two participants: the ids
// sorted lexicographically and joined. Both sides compute the same id no
// matter who starts the conversation.
func ConversationID(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// Conversation is the per-pair channel header: participants, latest activity
// and per-user unread counters.
type Conversation struct {
	ID            string         `json:"id"`
	Participants  []string       `json:"participants"`
	LastMessage   string         `json:"last_message,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at"`
	Unread        map[string]int `json:"unread"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Message is one append-only chat entry. Messages are never edited or
// deleted; the collection only grows. ClientID echoes the sender-chosen id
// so a sender can recognize its own message in a later snapshot.
type Message struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
