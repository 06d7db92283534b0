package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetCodeInvalid covers missing, expired and mismatched reset codes with
// one error so callers cannot probe which case occurred.
var ErrResetCodeInvalid = errors.New("reset code invalid or expired")

// ResetStore keeps hashed password-reset codes keyed by email for a bounded
// lifetime. Codes are stored hashed: the store never holds the deliverable
// secret.
type ResetStore interface {
	Save(ctx context.Context, email string, codeHash []byte, ttl time.Duration) error
	Lookup(ctx context.Context, email string) ([]byte, error)
	Delete(ctx context.Context, email string) error
}

const resetPrefix = "pwreset:"

// RedisResetStore implements ResetStore with TTL-bound Redis keys.
type RedisResetStore struct {
	client *redis.Client
}

// NewRedisResetStore builds a Redis-backed reset code store.
func NewRedisResetStore(client *redis.Client) *RedisResetStore {
	return &RedisResetStore{client: client}
}

func (s *RedisResetStore) Save(ctx context.Context, email string, codeHash []byte, ttl time.Duration) error {
	return s.client.Set(ctx, resetPrefix+email, codeHash, ttl).Err()
}

func (s *RedisResetStore) Lookup(ctx context.Context, email string) ([]byte, error) {
	val, err := s.client.Get(ctx, resetPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, ErrResetCodeInvalid
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisResetStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, resetPrefix+email).Err()
}

type memoryResetEntry struct {
	hash    []byte
	expires time.Time
}

type memoryResetStore struct {
	mu      sync.Mutex
	entries map[string]memoryResetEntry
}

// NewMemoryResetStore builds an in-memory reset code store for testing.
func NewMemoryResetStore() ResetStore {
	return &memoryResetStore{entries: make(map[string]memoryResetEntry)}
}

func (s *memoryResetStore) Save(_ context.Context, email string, codeHash []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = memoryResetEntry{hash: append([]byte(nil), codeHash...), expires: time.Now().Add(ttl)}
	return nil
}

func (s *memoryResetStore) Lookup(_ context.Context, email string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[email]
	if !ok || time.Now().After(entry.expires) {
		delete(s.entries, email)
		return nil, ErrResetCodeInvalid
	}
	return entry.hash, nil
}

func (s *memoryResetStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}
