package inquiries

import (
	"context"
	"errors"
	"testing"

	"github.com/sokoni/sokoni/internal/feed"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), nil, feed.NewBus(nil, nil))
}

func TestCreateAndAnswer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, CreateInput{BuyerID: "buyer-1", SellerID: "seller-1", ProductID: "p1", Question: "Does it ship to Kisumu?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Status != StatusOpen {
		t.Fatalf("expected open, got %s", q.Status)
	}

	answered, err := svc.Answer(ctx, q.ID, "seller-1", "Yes, within 3 days.")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answered.Status != StatusAnswered || answered.Answer == "" || answered.AnsweredAt == nil {
		t.Fatalf("expected answered inquiry, got %+v", answered)
	}
}

func TestAnswerPermissions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, CreateInput{BuyerID: "buyer-1", SellerID: "seller-1", Question: "Still available?"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Answer(ctx, q.ID, "buyer-1", "yes"); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if _, err := svc.Answer(ctx, q.ID, "seller-1", "Yes."); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := svc.Answer(ctx, q.ID, "seller-1", "Again"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{BuyerID: "u1", SellerID: "u2", Question: "   "}); err == nil {
		t.Fatalf("expected empty question rejection")
	}
	if _, err := svc.Create(ctx, CreateInput{BuyerID: "u1", SellerID: "u1", Question: "Mine?"}); err == nil {
		t.Fatalf("expected self-inquiry rejection")
	}
}

func TestListsSplitByParty(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{BuyerID: "buyer-1", SellerID: "seller-1", Question: "Q1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{BuyerID: "buyer-2", SellerID: "seller-1", Question: "Q2"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	buying, err := svc.ListForBuyer(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("list buying: %v", err)
	}
	if len(buying) != 1 {
		t.Fatalf("expected 1 buyer inquiry, got %d", len(buying))
	}

	selling, err := svc.ListForSeller(ctx, "seller-1")
	if err != nil {
		t.Fatalf("list selling: %v", err)
	}
	if len(selling) != 2 {
		t.Fatalf("expected 2 seller inquiries, got %d", len(selling))
	}
}
