package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persister is the durable mirror behind a Store: a single named blob per
// session, read once at hydration and written on every mutation.
type Persister interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

const snapshotPrefix = "auth-storage:"

// RedisPersister keeps session snapshots in redis with a sliding TTL.
type RedisPersister struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPersister(rdb *redis.Client, ttl time.Duration) *RedisPersister {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPersister{rdb: rdb, ttl: ttl}
}

func (p *RedisPersister) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := p.rdb.Get(ctx, snapshotPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (p *RedisPersister) Save(ctx context.Context, key string, data []byte) error {
	return p.rdb.Set(ctx, snapshotPrefix+key, data, p.ttl).Err()
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, snapshotPrefix+key).Err()
}
