package sync

import (
	"errors"
	"testing"
)

type msg struct {
	ClientID string
	Text     string
}

func newOutbox() *Outbox[msg] {
	return NewOutbox[msg](func(local, remote msg) bool {
		return local.ClientID == remote.ClientID
	})
}

func TestPendingAppearsImmediately(t *testing.T) {
	ob := newOutbox()
	ob.Add(msg{ClientID: "c1", Text: "hi"})

	view := ob.Overlay(nil)
	if len(view) != 1 || view[0].State != Pending {
		t.Fatalf("expected one pending entry, got %+v", view)
	}
}

func TestSnapshotConfirmsPending(t *testing.T) {
	ob := newOutbox()
	ob.Add(msg{ClientID: "c1", Text: "hi"})

	// The server snapshot now includes the message: the local copy resolves
	// and the server copy represents it.
	view := ob.Overlay([]msg{{ClientID: "c1", Text: "hi"}})
	if len(view) != 1 || view[0].State != Confirmed {
		t.Fatalf("expected single confirmed entry, got %+v", view)
	}

	// Resolved entries do not come back.
	view = ob.Overlay([]msg{{ClientID: "c1", Text: "hi"}})
	if len(view) != 1 {
		t.Fatalf("expected no duplicate, got %+v", view)
	}
}

func TestFailedStaysVisible(t *testing.T) {
	ob := newOutbox()
	id := ob.Add(msg{ClientID: "c1", Text: "hi"})
	ob.Fail(id, errors.New("send failed"))

	// A failed write is never silently removed, even across snapshots.
	view := ob.Overlay([]msg{{ClientID: "other", Text: "x"}})
	if len(view) != 2 {
		t.Fatalf("expected snapshot item plus failed local, got %+v", view)
	}
	last := view[len(view)-1]
	if last.State != Failed || last.Err == nil {
		t.Fatalf("expected failed entry with error, got %+v", last)
	}

	// Only an explicit discard drops it.
	ob.Discard(id)
	if view := ob.Overlay(nil); len(view) != 0 {
		t.Fatalf("expected empty after discard, got %+v", view)
	}
}

func TestOverlayKeepsSendOrder(t *testing.T) {
	ob := newOutbox()
	ob.Add(msg{ClientID: "c1", Text: "first"})
	ob.Add(msg{ClientID: "c2", Text: "second"})

	view := ob.Overlay([]msg{{ClientID: "s1", Text: "from server"}})
	if len(view) != 3 {
		t.Fatalf("expected 3 entries, got %+v", view)
	}
	if view[0].State != Confirmed || view[1].Item.Text != "first" || view[2].Item.Text != "second" {
		t.Fatalf("expected server items then locals in send order, got %+v", view)
	}
}
