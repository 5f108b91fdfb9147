package session

// Store holds the per-session conversation buffers: one lobby sequence
// and one sequence per private counterpart. All access happens on the
// session event loop, so no locking is needed here.
type Store struct {
	lobby   []Message
	private map[int][]Message
}

func NewStore() *Store {
	return &Store{private: make(map[int][]Message)}
}

// Append inserts a classified message at the tail of its conversation.
// Redelivered messages (same id already present) are dropped and
// Append reports false.
func (s *Store) Append(env Envelope) bool {
	if env.Kind == ConvLobby {
		if containsID(s.lobby, env.Msg.ID) {
			return false
		}
		s.lobby = append(s.lobby, env.Msg)
		return true
	}
	list := s.private[env.Counterpart]
	if containsID(list, env.Msg.ID) {
		return false
	}
	s.private[env.Counterpart] = append(list, env.Msg)
	return true
}

// PrependLobby merges an older history page (ordered oldest to newest)
// in front of the buffered lobby messages. Entries whose id is already
// buffered are filtered out so a fetch window overlapping the live
// stream cannot introduce duplicates.
func (s *Store) PrependLobby(page []Message) {
	s.lobby = prependFiltered(page, s.lobby)
}

// PrependPrivate is PrependLobby for a private conversation.
func (s *Store) PrependPrivate(counterpart int, page []Message) {
	s.private[counterpart] = prependFiltered(page, s.private[counterpart])
}

// Lobby returns a copy of the lobby buffer.
func (s *Store) Lobby() []Message {
	out := make([]Message, len(s.lobby))
	copy(out, s.lobby)
	return out
}

// Private returns a copy of the buffer for one counterpart.
func (s *Store) Private(counterpart int) []Message {
	list := s.private[counterpart]
	out := make([]Message, len(list))
	copy(out, list)
	return out
}

func prependFiltered(page, existing []Message) []Message {
	fresh := page[:0:0]
	for _, m := range page {
		if !containsID(existing, m.ID) {
			fresh = append(fresh, m)
		}
	}
	merged := make([]Message, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	return append(merged, existing...)
}

func containsID(list []Message, id int) bool {
	for i := range list {
		if list[i].ID == id {
			return true
		}
	}
	return false
}
