package lockout

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters and locks as expiring redis keys, so any
// number of service replicas share them.
type RedisStore struct {
	client redis.Cmdable
	policy Policy
	prefix string
}

func NewRedisStore(client redis.Cmdable, policy Policy) *RedisStore {
	return &RedisStore{client: client, policy: policy, prefix: "resourcehub:lockout:"}
}

func (s *RedisStore) failKey(key string) string { return s.prefix + "fail:" + key }
func (s *RedisStore) lockKey(key string) string { return s.prefix + "lock:" + key }

func (s *RedisStore) Locked(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.lockKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string) (bool, error) {
	fk := s.failKey(key)

	count, err := s.client.Incr(ctx, fk).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	// the window starts with the first failure
	if count == 1 {
		if err := s.client.Expire(ctx, fk, s.policy.Window).Err(); err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}
	}

	if count < int64(s.policy.MaxAttempts) {
		return false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.lockKey(key), 1, s.policy.LockFor)
		pipe.Del(ctx, fk)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.failKey(key), s.lockKey(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
