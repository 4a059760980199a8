package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Lock is a single-instance Redis lock built on SET NX PX.
type Lock struct {
	rdb      redis.Cmdable
	newToken func() string
}

var _ portssvc.RefreshLock = (*Lock)(nil)

func New(rdb redis.Cmdable) *Lock {
	return &Lock{rdb: rdb, newToken: uuid.NewString}
}

func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := l.newToken()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		if err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("redis release %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}
