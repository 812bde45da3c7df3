package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vocabtrainer/internal/domain"
)

const keyPrefix = "vocabtrainer:session:"

// RedisStore keeps sessions as JSON values that expire after ttl of inactivity
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a store on top of an existing client
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Connect opens a client and checks the server answers
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Load returns the conversation's session, or a fresh idle one
func (s *RedisStore) Load(ctx context.Context, key domain.ConversationKey) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSession(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}

	var state domain.Session
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	state.Key = key
	return &state, nil
}

// Save stores the session and refreshes its expiry
func (s *RedisStore) Save(ctx context.Context, state *domain.Session) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.Key, err)
	}
	if err := s.rdb.Set(ctx, redisKey(state.Key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", state.Key, err)
	}
	return nil
}

func redisKey(key domain.ConversationKey) string {
	return keyPrefix + key.String()
}
