package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sokoni/sokoni/internal/feed"
)

// Service manages the per-user notification collection.
type Service struct {
	repo Repository
	bus  *feed.Bus
}

// NewService creates a notification service.
func NewService(repo Repository, bus *feed.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// PushInput captures a new in-app notification.
type PushInput struct {
	UserID string
	Kind   string
	Title  string
	Body   string
}

// Push stores a notification and signals the owner's live feed.
func (s *Service) Push(ctx context.Context, input PushInput) (Notification, error) {
	if input.UserID == "" {
		return Notification{}, errors.New("user id is required")
	}
	n := Notification{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Kind:      input.Kind,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	s.bus.Publish(ctx, feed.KindNotifications, input.UserID)
	return n, nil
}

// List returns the user's notifications most-recent-first.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkAllRead transitions all unread notifications to read in one batch. When
// nothing was unread the call is a no-op and no feed event is emitted, so an
// idle client cannot trigger snapshot churn.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	changed, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.bus.Publish(ctx, feed.KindNotifications, userID)
	}
	return changed, nil
}
