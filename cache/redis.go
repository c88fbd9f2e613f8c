package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisProvider stores entries in Redis, msgpack-encoded, with a parallel
// Redis set per tag to support DeleteByTag without a full scan.
type RedisProvider struct {
	client    redis.UniversalClient
	keyPrefix string
	tagPrefix string
}

// NewRedisProvider wraps client. keyPrefix namespaces both entry keys and
// tag-index keys so a shared Redis instance can host multiple callers.
func NewRedisProvider(client redis.UniversalClient, keyPrefix string) *RedisProvider {
	return &RedisProvider{client: client, keyPrefix: keyPrefix + ":e:", tagPrefix: keyPrefix + ":t:"}
}

func (p *RedisProvider) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := p.client.Get(ctx, p.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var entry Entry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, entry Entry) error {
	raw, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}
	expiry := entry.TTL + entry.StaleTTL
	if expiry <= 0 {
		expiry = 0
	}
	if err := p.client.Set(ctx, p.keyPrefix+key, raw, expiry).Err(); err != nil {
		return err
	}
	for _, tag := range entry.Tags {
		if err := p.client.SAdd(ctx, p.tagPrefix+tag, key).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, p.keyPrefix+key).Err()
}

func (p *RedisProvider) DeleteByTag(ctx context.Context, tag string) error {
	keys, err := p.client.SMembers(ctx, p.tagPrefix+tag).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.keyPrefix + k
	}
	if err := p.client.Del(ctx, full...).Err(); err != nil {
		return err
	}
	return p.client.Del(ctx, p.tagPrefix+tag).Err()
}

func (p *RedisProvider) Clear(ctx context.Context) error {
	iter := p.client.Scan(ctx, 0, p.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := p.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
