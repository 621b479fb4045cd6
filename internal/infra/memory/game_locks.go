package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quiz-game-service/internal/domain"
)

// GameLocks is an in-process implementation of app.GameLocker. Entries are
// created on first use and dropped once no holder or waiter references them.
type GameLocks struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	sem  chan struct{}
	refs int
}

// NewGameLocks creates a lock table. A zero timeout waits until ctx is done.
func NewGameLocks(timeout time.Duration) *GameLocks {
	return &GameLocks{
		timeout: timeout,
		locks:   make(map[string]*gameLock),
	}
}

func (l *GameLocks) Lock(ctx context.Context, gameID string) (func(), error) {
	entry := l.acquireRef(gameID)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseRef(gameID)
		return nil, fmt.Errorf("lock game %s: %w: %v", gameID, domain.ErrConcurrencyConflict, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.releaseRef(gameID)
		})
	}, nil
}

// Len reports how many games currently have a lock entry.
func (l *GameLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *GameLocks) acquireRef(gameID string) *gameLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[gameID]
	if !ok {
		entry = &gameLock{sem: make(chan struct{}, 1)}
		l.locks[gameID] = entry
	}
	entry.refs++
	return entry
}

func (l *GameLocks) releaseRef(gameID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[gameID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, gameID)
	}
}
