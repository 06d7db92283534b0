package notifications

import "time"

// Notification is one in-app notification row. Read state is a nullable
// timestamp rather than a flag so "when was it seen" survives for auditing.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Unread reports whether the notification has not been seen yet.
func (n Notification) Unread() bool {
	return n.ReadAt == nil
}
