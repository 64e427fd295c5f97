package session

import (
	"sync"
	"testing"
	"time"
)

func TestStorePersistsStateAcrossAcquires(t *testing.T) {
	store := NewStore(0)
	id := NewSessionID()

	st, release := store.Acquire(id)
	st.Set(ScopeUser, "count", 1)
	release()

	st, release = store.Acquire(id)
	defer release()
	if got := st.Int(ScopeUser, "count"); got != 1 {
		t.Fatalf("count = %d after reacquire", got)
	}
}

func TestStoreIsolatesSessions(t *testing.T) {
	store := NewStore(0)

	a, releaseA := store.Acquire("a")
	a.Set(ScopeUser, "count", 5)
	releaseA()

	b, releaseB := store.Acquire("b")
	defer releaseB()
	if got := b.Int(ScopeUser, "count"); got != 0 {
		t.Fatalf("session b sees a's state: count = %d", got)
	}
}

func TestStoreSerializesTurnsPerSession(t *testing.T) {
	store := NewStore(0)
	const turns = 50

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, release := store.Acquire("s")
			defer release()
			st.Set(ScopeUser, "count", st.Int(ScopeUser, "count")+1)
		}()
	}
	wg.Wait()

	st, release := store.Acquire("s")
	defer release()
	if got := st.Int(ScopeUser, "count"); got != turns {
		t.Fatalf("count = %d, want %d", got, turns)
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store := NewStore(20 * time.Millisecond)

	st, release := store.Acquire("s")
	st.Set(ScopeUser, "count", 1)
	release()

	time.Sleep(50 * time.Millisecond)
	st, release = store.Acquire("s")
	defer release()
	if got := st.Int(ScopeUser, "count"); got != 0 {
		t.Fatalf("count = %d, want fresh state after expiry", got)
	}
}

func TestStoreDrop(t *testing.T) {
	store := NewStore(0)
	st, release := store.Acquire("s")
	st.Set(ScopeUser, "count", 2)
	release()

	store.Drop("s")
	if _, ok := store.Peek("s"); ok {
		t.Fatal("session survived Drop")
	}
}
