package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-game-service/internal/domain"
)

func TestGameLocksLifecycle(t *testing.T) {
	locks := NewGameLocks(0)

	unlock, err := locks.Lock(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if locks.Len() != 1 {
		t.Fatalf("expected lock entry present")
	}

	unlock()
	unlock() // second call is a no-op
	if locks.Len() != 0 {
		t.Fatalf("expected entry removed once released, got %d", locks.Len())
	}
}

func TestGameLocksTimeoutIsConflict(t *testing.T) {
	locks := NewGameLocks(20 * time.Millisecond)

	unlock, err := locks.Lock(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	_, err = locks.Lock(context.Background(), "game-1")
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if locks.Len() != 1 {
		t.Fatalf("waiter ref leaked: %d entries", locks.Len())
	}
}

func TestGameLocksAreScopedPerGame(t *testing.T) {
	locks := NewGameLocks(20 * time.Millisecond)

	unlockA, err := locks.Lock(context.Background(), "game-a")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	unlockB, err := locks.Lock(context.Background(), "game-b")
	if err != nil {
		t.Fatalf("lock b should not wait on a: %v", err)
	}
	unlockB()
}

func TestGameLocksHandOver(t *testing.T) {
	locks := NewGameLocks(time.Second)

	unlock, err := locks.Lock(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		next, err := locks.Lock(context.Background(), "game-1")
		if err == nil {
			next()
		}
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("waiter never acquired the lock")
	}
}
