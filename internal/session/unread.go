package session

// UnreadLedger tracks how many messages from each counterpart arrived
// while that conversation was not on screen. The active conversation's
// counter is always zero. Mutated only on the session event loop.
type UnreadLedger struct {
	counts map[int]int
	active int // counterpart id, 0 = lobby or nothing focused
}

func NewUnreadLedger() *UnreadLedger {
	return &UnreadLedger{counts: make(map[int]int)}
}

// Increment bumps the counter for one counterpart. Callers are
// expected to have already excluded self-authored messages and the
// active conversation.
func (l *UnreadLedger) Increment(counterpart int) {
	l.counts[counterpart]++
}

// SetActive records which private conversation the user is viewing.
// Passing 0 means none. Entering a conversation zeroes its counter
// immediately; the server-side read acknowledgement is the session's
// job and happens after this returns.
func (l *UnreadLedger) SetActive(counterpart int) {
	l.active = counterpart
	if counterpart != 0 {
		delete(l.counts, counterpart)
	}
}

// Active returns the counterpart id currently being viewed, 0 if none.
func (l *UnreadLedger) Active() int { return l.active }

// Count returns the counter for one counterpart.
func (l *UnreadLedger) Count(counterpart int) int { return l.counts[counterpart] }

// ReplaceAll swaps in server truth wholesale. A merge would let stale
// local entries linger, so the previous map is discarded entirely. The
// active conversation stays exempt.
func (l *UnreadLedger) ReplaceAll(counts map[int]int) {
	fresh := make(map[int]int, len(counts))
	for id, n := range counts {
		if id == l.active || n <= 0 {
			continue
		}
		fresh[id] = n
	}
	l.counts = fresh
}

// Total is the sum across all counterparts.
func (l *UnreadLedger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Snapshot copies the counter map for callers outside the event loop.
func (l *UnreadLedger) Snapshot() map[int]int {
	out := make(map[int]int, len(l.counts))
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}
