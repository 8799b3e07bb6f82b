package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"news_aggregator/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when Redis is requested without an address.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	connectionTimeout = 5 * time.Second
	tagSuffix         = "tag:" + KeyItems
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(opts RedisOptions) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisStore keeps results as JSON values. Every written key is recorded in a
// tag set so Invalidate can drop them all at once.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) tagKey() string {
	return s.prefix + tagSuffix
}

func (s *RedisStore) Get(ctx context.Context, key string) (models.AggregationResult, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.AggregationResult{}, false, nil
	}
	if err != nil {
		return models.AggregationResult{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var result models.AggregationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.AggregationResult{}, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return result, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, result models.AggregationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(key), data, s.ttl)
		pipe.SAdd(ctx, s.tagKey(), s.key(key))
		pipe.Expire(ctx, s.tagKey(), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, s.tagKey()).Result()
	if err != nil {
		return fmt.Errorf("redis tag members: %w", err)
	}
	keys = append(keys, s.tagKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
