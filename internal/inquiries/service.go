package inquiries

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

var (
	// ErrNotSeller indicates someone other than the addressed seller tried to answer.
	ErrNotSeller = errors.New("only the seller can answer")
	// ErrAlreadyAnswered indicates the inquiry already has an answer.
	ErrAlreadyAnswered = errors.New("inquiry already answered")
)

// Service manages product inquiries.
type Service struct {
	repo   Repository
	notifs *notifications.Service
	bus    *feed.Bus
}

// NewService creates an inquiry service.
func NewService(repo Repository, notifs *notifications.Service, bus *feed.Bus) *Service {
	return &Service{repo: repo, notifs: notifs, bus: bus}
}

// CreateInput captures a buyer question.
type CreateInput struct {
	BuyerID   string
	SellerID  string
	ProductID string
	Question  string
}

// Create stores an open inquiry and announces it to the seller.
func (s *Service) Create(ctx context.Context, input CreateInput) (Inquiry, error) {
	if strings.TrimSpace(input.Question) == "" {
		return Inquiry{}, errors.New("question must not be empty")
	}
	if input.BuyerID == input.SellerID {
		return Inquiry{}, errors.New("cannot inquire on your own listing")
	}

	q := Inquiry{
		ID:        uuid.New().String(),
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		ProductID: input.ProductID,
		Question:  strings.TrimSpace(input.Question),
		Status:    StatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return Inquiry{}, err
	}

	s.bus.Publish(ctx, feed.KindInquiries, q.SellerID)
	s.bus.Publish(ctx, feed.KindInquiries, q.BuyerID)

	return q, nil
}

// Answer records the seller's reply and notifies the buyer.
func (s *Service) Answer(ctx context.Context, inquiryID, actorID, answer string) (Inquiry, error) {
	if strings.TrimSpace(answer) == "" {
		return Inquiry{}, errors.New("answer must not be empty")
	}

	q, err := s.repo.Get(ctx, inquiryID)
	if err != nil {
		return Inquiry{}, err
	}
	if actorID != q.SellerID {
		return Inquiry{}, ErrNotSeller
	}
	if q.Status == StatusAnswered {
		return Inquiry{}, ErrAlreadyAnswered
	}

	now := time.Now().UTC()
	if err := s.repo.SetAnswer(ctx, inquiryID, strings.TrimSpace(answer), now); err != nil {
		return Inquiry{}, err
	}
	q.Answer = strings.TrimSpace(answer)
	q.Status = StatusAnswered
	q.AnsweredAt = &now

	if s.notifs != nil {
		_, _ = s.notifs.Push(ctx, notifications.PushInput{
			UserID: q.BuyerID,
			Kind:   notify.KindInquiryAnswered,
			Title:  "Inquiry answered",
			Body:   "The seller answered your question.",
		})
	}
	s.bus.Publish(ctx, feed.KindInquiries, q.BuyerID)
	s.bus.Publish(ctx, feed.KindInquiries, q.SellerID)

	return q, nil
}

// ListForBuyer returns the buyer's inquiries most-recent-first.
func (s *Service) ListForBuyer(ctx context.Context, buyerID string) ([]Inquiry, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

// ListForSeller returns the seller's inquiries most-recent-first.
func (s *Service) ListForSeller(ctx context.Context, sellerID string) ([]Inquiry, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}
