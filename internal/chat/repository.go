package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the addressed conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Repository persists conversations and their messages.
type Repository interface {
	SaveMessage(ctx context.Context, m Message) error
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	SaveConversation(ctx context.Context, conv Conversation) error
	Conversation(ctx context.Context, id string) (Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]Conversation, error)
}

// PostgresRepository implements Repository using PostgreSQL. Participants and
// unread counters are jsonb columns; conversation ids are derived strings, not
// uuids, so they are stored as text.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed chat repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SaveMessage appends a message.
func (r *PostgresRepository) SaveMessage(ctx context.Context, m Message) error {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO messages (id, client_id, conversation_id, sender_id, text, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, m.ClientID, m.ConversationID, m.SenderID, m.Text, m.CreatedAt.UTC())
	return err
}

// Messages returns a conversation's messages oldest-first.
func (r *PostgresRepository) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := r.db.Query(ctx, `SELECT id, client_id, conversation_id, sender_id, text, created_at
        FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			id        uuid.UUID
			m         Message
			createdAt time.Time
		)
		if err := rows.Scan(&id, &m.ClientID, &m.ConversationID, &m.SenderID, &m.Text, &createdAt); err != nil {
			return nil, err
		}
		m.ID = id.String()
		m.CreatedAt = createdAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveConversation upserts the conversation header.
func (r *PostgresRepository) SaveConversation(ctx context.Context, conv Conversation) error {
	participants, err := json.Marshal(conv.Participants)
	if err != nil {
		return err
	}
	unread, err := json.Marshal(conv.Unread)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO conversations (id, participants, last_message, last_message_at, unread, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            last_message = EXCLUDED.last_message,
            last_message_at = EXCLUDED.last_message_at,
            unread = EXCLUDED.unread`,
		conv.ID, participants, conv.LastMessage, conv.LastMessageAt.UTC(), unread, conv.CreatedAt.UTC())
	return err
}

// Conversation fetches one conversation header.
func (r *PostgresRepository) Conversation(ctx context.Context, id string) (Conversation, error) {
	row := r.db.QueryRow(ctx, `SELECT id, participants, last_message, last_message_at, unread, created_at
        FROM conversations WHERE id = $1`, id)
	return scanConversation(row)
}

// ListByParticipant returns the user's conversations latest-activity-first.
func (r *PostgresRepository) ListByParticipant(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, participants, last_message, last_message_at, unread, created_at
        FROM conversations WHERE participants @> $1 ORDER BY last_message_at DESC`,
		`["`+userID+`"]`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var (
		participants, unread      []byte
		lastMessageAt, createdAt  time.Time
		conv                      Conversation
	)
	err := row.Scan(&conv.ID, &participants, &conv.LastMessage, &lastMessageAt, &unread, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}
	if err := json.Unmarshal(participants, &conv.Participants); err != nil {
		return Conversation{}, err
	}
	if err := json.Unmarshal(unread, &conv.Unread); err != nil {
		return Conversation{}, err
	}
	conv.LastMessageAt = lastMessageAt.UTC()
	conv.CreatedAt = createdAt.UTC()
	return conv, nil
}
