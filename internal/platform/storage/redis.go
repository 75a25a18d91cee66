package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection as a redis hash keyed
// "collection:<name>", one field per record.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, host string, port int, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) key(collection string) string {
	return "collection:" + collection
}

func (s *RedisStore) Load(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	fields, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	records := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		records[k] = json.RawMessage(v)
	}
	return records, nil
}

func (s *RedisStore) Save(ctx context.Context, collection string, records map[string]json.RawMessage) error {
	key := s.key(collection)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(records) > 0 {
		fields := make(map[string]interface{}, len(records))
		for k, v := range records {
			fields[k] = string(v)
		}
		pipe.HSet(ctx, key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
