package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Chaves do estado de sessão por usuário.
const (
	KeyUserData       = "userData"
	KeySelectedMarket = "selectedMarket"
	KeyBetType        = "matkaBetType"
)

// Store é o armazenamento chave-valor da sessão do usuário (valores em JSON).
type Store interface {
	Get(ctx context.Context, userID, key string, v any) (bool, error)
	Set(ctx context.Context, userID, key string, v any) error
	Delete(ctx context.Context, userID string, keys ...string) error
}

// RedisStore guarda cada chave em session:{userID}:{key}.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration // 0 = sem expiração
}

func NewRedisStore(c *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: c, TTL: ttl}
}

func redisKey(userID, key string) string { return "session:" + userID + ":" + key }

func (s *RedisStore) Get(ctx context.Context, userID, key string, v any) (bool, error) {
	b, err := s.Client.Get(ctx, redisKey(userID, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("session decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, userID, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session encode %s: %w", key, err)
	}
	return s.Client.Set(ctx, redisKey(userID, key), b, s.TTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redisKey(userID, k)
	}
	return s.Client.Del(ctx, full...).Err()
}

// MemoryStore é usado com ENV=local e nos testes. Guarda JSON, como o Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, userID, key string, v any) (bool, error) {
	s.mu.RLock()
	b, ok := s.data[redisKey(userID, key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("session decode %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, userID, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.data[redisKey(userID, key)] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.data, redisKey(userID, k))
	}
	s.mu.Unlock()
	return nil
}
