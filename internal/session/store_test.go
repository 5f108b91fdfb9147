package session

import (
	"reflect"
	"testing"
)

func lobbyMsg(id, from int) Envelope {
	return Envelope{Msg: Message{ID: id, UserID: from}, Kind: ConvLobby}
}

func privateMsg(id, from, counterpart int) Envelope {
	to := counterpart
	return Envelope{
		Msg:         Message{ID: id, UserID: from, ToUserID: &to},
		Kind:        ConvPrivate,
		Counterpart: counterpart,
	}
}

func ids(msgs []Message) []int {
	out := make([]int, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestAppendIsIdempotent(t *testing.T) {
	s := NewStore()

	if !s.Append(lobbyMsg(10, 2)) {
		t.Fatal("first insert should succeed")
	}
	if s.Append(lobbyMsg(10, 2)) {
		t.Fatal("redelivered id should be dropped")
	}
	if got := ids(s.Lobby()); !reflect.DeepEqual(got, []int{10}) {
		t.Fatalf("lobby = %v, want [10]", got)
	}

	if !s.Append(privateMsg(11, 2, 2)) {
		t.Fatal("first private insert should succeed")
	}
	if s.Append(privateMsg(11, 2, 2)) {
		t.Fatal("redelivered private id should be dropped")
	}
	if got := ids(s.Private(2)); !reflect.DeepEqual(got, []int{11}) {
		t.Fatalf("private(2) = %v, want [11]", got)
	}
}

func TestDuplicateKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Append(lobbyMsg(1, 2))
	s.Append(lobbyMsg(2, 2))
	s.Append(lobbyMsg(3, 2))
	s.Append(lobbyMsg(2, 2)) // redelivery in the middle of the stream

	if got := ids(s.Lobby()); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("lobby = %v, want [1 2 3]", got)
	}
}

func TestPrependMergesOlderPageInFront(t *testing.T) {
	s := NewStore()
	s.Append(lobbyMsg(5, 2))
	s.Append(lobbyMsg(6, 2))

	s.PrependLobby([]Message{{ID: 3}, {ID: 4}})

	if got := ids(s.Lobby()); !reflect.DeepEqual(got, []int{3, 4, 5, 6}) {
		t.Fatalf("lobby = %v, want [3 4 5 6]", got)
	}
}

func TestPrependFiltersAlreadyBufferedIDs(t *testing.T) {
	s := NewStore()
	s.Append(privateMsg(5, 2, 2))
	s.Append(privateMsg(6, 2, 2))

	// The fetch window overlaps the live stream: 5 arrived live already.
	s.PrependPrivate(2, []Message{{ID: 4}, {ID: 5}})

	if got := ids(s.Private(2)); !reflect.DeepEqual(got, []int{4, 5, 6}) {
		t.Fatalf("private(2) = %v, want [4 5 6]", got)
	}
}

func TestPrependIntoEmptyConversation(t *testing.T) {
	s := NewStore()
	s.PrependPrivate(7, []Message{{ID: 1}, {ID: 2}})

	if got := ids(s.Private(7)); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("private(7) = %v, want [1 2]", got)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.Append(lobbyMsg(1, 2))

	snap := s.Lobby()
	snap[0].ID = 99
	if s.Lobby()[0].ID != 1 {
		t.Fatal("mutating a snapshot must not affect the store")
	}
}
