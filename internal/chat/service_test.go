package chat

import (
	"context"
	"testing"

	"github.com/sokoni/sokoni/internal/feed"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), nil, feed.NewBus(nil, nil))
}

func TestConversationIDSymmetric(t *testing.T) {
	if ConversationID("alice", "bob") != ConversationID("bob", "alice") {
		t.Fatalf("conversation id must not depend on who starts")
	}
	if ConversationID("alice", "bob") != "alice:bob" {
		t.Fatalf("unexpected id: %s", ConversationID("alice", "bob"))
	}
}

func TestSendCreatesConversationAndCountsUnread(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: "you there?"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	convs, err := svc.ListConversations(ctx, "bob")
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	conv := convs[0]
	if conv.Unread["bob"] != 2 {
		t.Fatalf("expected 2 unread for bob, got %d", conv.Unread["bob"])
	}
	if conv.Unread["alice"] != 0 {
		t.Fatalf("sender must not accumulate unread, got %d", conv.Unread["alice"])
	}
	if conv.LastMessage != "you there?" {
		t.Fatalf("expected last message cached, got %q", conv.LastMessage)
	}
}

func TestSendEchoesClientID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sent, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: "hi", ClientID: "local-7"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.ClientID != "local-7" {
		t.Fatalf("expected client id echoed, got %q", sent.ClientID)
	}

	msgs, err := svc.Messages(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ClientID != "local-7" {
		t.Fatalf("expected client id to survive persistence, got %+v", msgs)
	}
}

func TestMessagesOldestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: text}); err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
	}

	// Both sides read the same sequence.
	for _, viewer := range []struct{ me, peer string }{{"alice", "bob"}, {"bob", "alice"}} {
		msgs, err := svc.Messages(ctx, viewer.me, viewer.peer)
		if err != nil {
			t.Fatalf("messages for %s: %v", viewer.me, err)
		}
		if len(msgs) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(msgs))
		}
		if msgs[0].Text != "one" || msgs[2].Text != "three" {
			t.Fatalf("expected chronological order, got %q .. %q", msgs[0].Text, msgs[2].Text)
		}
	}
}

func TestMarkReadZeroesCounter(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.MarkRead(ctx, "bob", "alice"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	convs, err := svc.ListConversations(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if convs[0].Unread["bob"] != 0 {
		t.Fatalf("expected counter zeroed, got %d", convs[0].Unread["bob"])
	}

	// Already read and even unknown conversations are quiet no-ops.
	if err := svc.MarkRead(ctx, "bob", "alice"); err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if err := svc.MarkRead(ctx, "bob", "stranger"); err != nil {
		t.Fatalf("mark read unknown: %v", err)
	}
}

func TestSendValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "bob", Text: "   "}); err == nil {
		t.Fatalf("expected blank text rejection")
	}
	if _, err := svc.Send(ctx, SendInput{SenderID: "alice", RecipientID: "alice", Text: "me"}); err == nil {
		t.Fatalf("expected self-message rejection")
	}
}
