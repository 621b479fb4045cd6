package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"quiz-game-service/internal/domain"
)

// releaseScript deletes the lock only if it is still held by this token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GameLock is a cross-instance implementation of app.GameLocker backed by
// SET NX PX. The ttl bounds how long a crashed holder can block a game.
type GameLock struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	retry   time.Duration
}

func NewGameLock(client *redis.Client, ttl, timeout time.Duration) *GameLock {
	return &GameLock{
		client:  client,
		ttl:     ttl,
		timeout: timeout,
		retry:   10 * time.Millisecond,
	}
}

func (l *GameLock) Lock(ctx context.Context, gameID string) (func(), error) {
	key := l.key(gameID)
	token := uuid.NewString()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("lock game %s: %w", gameID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock game %s: %w: %v", gameID, domain.ErrConcurrencyConflict, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}

func (l *GameLock) key(gameID string) string {
	return "game:lock:" + gameID
}
