package source

import (
	"time"

	"github.com/dlshle/timedcache/errors"
	"github.com/dlshle/timedcache/retry"
	"github.com/go-redis/redis"
)

// RedisSource fetches string values from redis, one redis key per cache key.
type RedisSource struct {
	client *redis.Client
}

func NewRedisSource(addr, password string, db int) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	err := retry.Do(func() error {
		return client.Ping().Err()
	}, retry.WithMaxAttempts(3), retry.WithInterval(250*time.Millisecond), retry.WithBackoff(2))
	if err != nil {
		client.Close()
		return nil, errors.WrapWithStackTrace(err)
	}
	return &RedisSource{client: client}, nil
}

func (s *RedisSource) Fetch(key string) (string, error) {
	val, err := s.client.Get(key).Result()
	if err == redis.Nil {
		return "", errors.Errorf("redis source: no value for key %s", key)
	}
	if err != nil {
		return "", errors.WrapWithStackTrace(err)
	}
	return val, nil
}

func (s *RedisSource) Put(key, value string, expiration time.Duration) error {
	return s.client.Set(key, value, expiration).Err()
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}
