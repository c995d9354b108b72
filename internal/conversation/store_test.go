package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStoreCreatesOnFirstUse(t *testing.T) {
	store := NewStore(time.Hour, nil, zap.NewNop())

	session, release := store.Acquire(context.Background(), "user-1", "sess-1")
	if session.State != StateInitial {
		t.Fatalf("expected initial state, got %s", session.State)
	}
	session.State = StateAwaitingTicketType
	release()

	session, release = store.Acquire(context.Background(), "user-1", "sess-1")
	defer release()
	if session.State != StateAwaitingTicketType {
		t.Fatal("expected mutation to persist across acquisitions")
	}
}

func TestStoreKeysAreUserScoped(t *testing.T) {
	store := NewStore(time.Hour, nil, zap.NewNop())

	a, releaseA := store.Acquire(context.Background(), "user-a", "sess-1")
	a.State = StateCompleted
	releaseA()

	b, releaseB := store.Acquire(context.Background(), "user-b", "sess-1")
	defer releaseB()
	if b.State != StateInitial {
		t.Fatal("same session id under a different user must be a distinct session")
	}
}

func TestStoreResetDropsSession(t *testing.T) {
	store := NewStore(time.Hour, nil, zap.NewNop())

	session, release := store.Acquire(context.Background(), "user-1", "sess-1")
	session.State = StateCompleted
	release()

	store.Reset(context.Background(), "user-1", "sess-1")

	session, release = store.Acquire(context.Background(), "user-1", "sess-1")
	defer release()
	if session.State != StateInitial {
		t.Fatal("reset session should start fresh")
	}
}

func TestStoreSerializesSameKey(t *testing.T) {
	store := NewStore(time.Hour, nil, zap.NewNop())

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, release := store.Acquire(context.Background(), "user-1", "sess-1")
			session.History = append(session.History, "line")
			release()
		}()
	}
	wg.Wait()

	session, release := store.Acquire(context.Background(), "user-1", "sess-1")
	defer release()
	if len(session.History) != turns {
		t.Fatalf("expected %d history lines, got %d (lost update)", turns, len(session.History))
	}
}

func TestStoreEvictsExpired(t *testing.T) {
	store := NewStore(10*time.Millisecond, nil, zap.NewNop())

	session, release := store.Acquire(context.Background(), "user-1", "sess-1")
	session.State = StateCompleted
	release()

	time.Sleep(20 * time.Millisecond)
	store.evict(time.Now())

	session, release = store.Acquire(context.Background(), "user-1", "sess-1")
	defer release()
	if session.State != StateInitial {
		t.Fatal("expired session should have been evicted")
	}
}
