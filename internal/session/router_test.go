package session

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func newTestRouter(selfID int) (*Router, *Store, *UnreadLedger) {
	store := NewStore()
	ledger := NewUnreadLedger()
	return NewRouter(selfID, store, ledger, zerolog.Nop()), store, ledger
}

func intp(n int) *int { return &n }

func TestClassifyLobby(t *testing.T) {
	r, _, _ := newTestRouter(1)

	env := r.Classify(Message{ID: 10, UserID: 2})
	if env.Kind != ConvLobby || env.Counterpart != 0 {
		t.Fatalf("got kind=%v counterpart=%d, want lobby", env.Kind, env.Counterpart)
	}
}

func TestCounterpartIsNeverSelf(t *testing.T) {
	// The same frame, seen by both participants, must land under the
	// other party's id on each side.
	frame := Message{ID: 10, UserID: 1, ToUserID: intp(2)}

	asSender, _, _ := newTestRouter(1)
	env := asSender.Classify(frame)
	if env.Kind != ConvPrivate || env.Counterpart != 2 {
		t.Fatalf("sender view: counterpart = %d, want 2", env.Counterpart)
	}

	asRecipient, _, _ := newTestRouter(2)
	env = asRecipient.Classify(frame)
	if env.Kind != ConvPrivate || env.Counterpart != 1 {
		t.Fatalf("recipient view: counterpart = %d, want 1", env.Counterpart)
	}
}

func TestUnreadGrowsWhileInactive(t *testing.T) {
	r, _, ledger := newTestRouter(1)

	for i := 0; i < 4; i++ {
		r.Route(Message{ID: 10 + i, UserID: 2, ToUserID: intp(1)})
	}
	if got := ledger.Count(2); got != 4 {
		t.Fatalf("count(2) = %d, want 4", got)
	}

	ledger.SetActive(2)
	if got := ledger.Count(2); got != 0 {
		t.Fatalf("count(2) = %d, want 0 after opening the conversation", got)
	}

	// While on screen, further messages do not count as unread.
	r.Route(Message{ID: 20, UserID: 2, ToUserID: intp(1)})
	if got := ledger.Count(2); got != 0 {
		t.Fatalf("count(2) = %d, want 0 while active", got)
	}
}

func TestSelfAuthoredNeverCountsAsUnread(t *testing.T) {
	r, store, ledger := newTestRouter(1)

	r.Route(Message{ID: 12, UserID: 1, ToUserID: intp(2)})

	if got := ids(store.Private(2)); !reflect.DeepEqual(got, []int{12}) {
		t.Fatalf("private(2) = %v, want [12]", got)
	}
	if got := ledger.Total(); got != 0 {
		t.Fatalf("total unread = %d, want 0", got)
	}
}

func TestLobbyNeverCountsAsUnread(t *testing.T) {
	r, _, ledger := newTestRouter(1)

	r.Route(Message{ID: 30, UserID: 2})
	r.Route(Message{ID: 31, UserID: 3})

	if got := ledger.Total(); got != 0 {
		t.Fatalf("total unread = %d, want 0 for lobby traffic", got)
	}
}

func TestRedeliveryDoesNotDoubleCount(t *testing.T) {
	r, store, ledger := newTestRouter(1)

	r.Route(Message{ID: 10, UserID: 2, ToUserID: intp(1)})
	if _, stored := r.Route(Message{ID: 10, UserID: 2, ToUserID: intp(1)}); stored {
		t.Fatal("redelivery should not be stored")
	}

	if got := len(store.Private(2)); got != 1 {
		t.Fatalf("private(2) has %d messages, want 1", got)
	}
	if got := ledger.Count(2); got != 1 {
		t.Fatalf("count(2) = %d, want 1", got)
	}
}

// A full exchange while the lobby is on screen: a message arrives, its
// retried duplicate is dropped, and the user's own reply is filed
// without touching unread.
func TestIncomingExchangeWithRedelivery(t *testing.T) {
	r, store, ledger := newTestRouter(1)

	r.Route(Message{ID: 10, UserID: 2, ToUserID: intp(1), Content: "hi"})
	r.Route(Message{ID: 10, UserID: 2, ToUserID: intp(1), Content: "hi"})
	r.Route(Message{ID: 12, UserID: 1, ToUserID: intp(2), Content: "yo"})

	if got := ids(store.Private(2)); !reflect.DeepEqual(got, []int{10, 12}) {
		t.Fatalf("private(2) = %v, want [10 12]", got)
	}
	if got := ledger.Count(2); got != 1 {
		t.Fatalf("count(2) = %d, want 1 (reply is self-authored)", got)
	}
	if got := ledger.Total(); got != 1 {
		t.Fatalf("total = %d, want 1", got)
	}
}
