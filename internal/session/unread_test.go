package session

import "testing"

func TestIncrementAndTotal(t *testing.T) {
	l := NewUnreadLedger()
	l.Increment(2)
	l.Increment(2)
	l.Increment(3)

	if got := l.Count(2); got != 2 {
		t.Fatalf("count(2) = %d, want 2", got)
	}
	if got := l.Total(); got != 3 {
		t.Fatalf("total = %d, want 3", got)
	}
}

func TestSetActiveZeroesCounter(t *testing.T) {
	l := NewUnreadLedger()
	for i := 0; i < 5; i++ {
		l.Increment(2)
	}
	l.SetActive(2)

	if got := l.Count(2); got != 0 {
		t.Fatalf("count(2) = %d, want 0 after activation", got)
	}
	if got := l.Active(); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}

	// Leaving the conversation does not resurrect the old count.
	l.SetActive(0)
	if got := l.Count(2); got != 0 {
		t.Fatalf("count(2) = %d, want 0 after deactivation", got)
	}
}

func TestReplaceAllOverwritesWholesale(t *testing.T) {
	l := NewUnreadLedger()
	l.Increment(2)
	l.Increment(9) // stale local entry the server knows nothing about

	l.ReplaceAll(map[int]int{2: 4, 5: 1})

	if got := l.Count(9); got != 0 {
		t.Fatalf("count(9) = %d, want 0 after replace", got)
	}
	if got := l.Count(2); got != 4 {
		t.Fatalf("count(2) = %d, want 4", got)
	}
	if got := l.Total(); got != 5 {
		t.Fatalf("total = %d, want 5", got)
	}
}

func TestReplaceAllKeepsActiveAtZero(t *testing.T) {
	l := NewUnreadLedger()
	l.SetActive(2)

	l.ReplaceAll(map[int]int{2: 7, 3: 1})

	if got := l.Count(2); got != 0 {
		t.Fatalf("count(2) = %d, want 0 while active", got)
	}
	if got := l.Count(3); got != 1 {
		t.Fatalf("count(3) = %d, want 1", got)
	}
}

func TestReplaceAllDropsNonPositiveEntries(t *testing.T) {
	l := NewUnreadLedger()
	l.ReplaceAll(map[int]int{2: 0, 3: -1, 4: 2})

	if got := l.Total(); got != 2 {
		t.Fatalf("total = %d, want 2", got)
	}
}
