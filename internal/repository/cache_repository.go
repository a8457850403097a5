package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type cacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) CacheRepository {
	return &cacheRepository{client: client}
}

func (r *cacheRepository) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Отсутствие ключа — не ошибка.
		return "", nil
	}
	return val, err
}

func (r *cacheRepository) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// GetJSON возвращает found=false при промахе, чтобы вызывающий код отличал
// пустое значение от отсутствующего.
func (r *cacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *cacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(ctx, key, jsonData, expiration).Err()
}

// NewNoopCacheRepository — заглушка для офлайн-запуска без Redis: чтение
// всегда промахивается, запись ничего не делает.
func NewNoopCacheRepository() CacheRepository {
	return noopCacheRepository{}
}

type noopCacheRepository struct{}

func (noopCacheRepository) Get(context.Context, string) (string, error) { return "", nil }

func (noopCacheRepository) Set(context.Context, string, string, time.Duration) error { return nil }

func (noopCacheRepository) Delete(context.Context, string) error { return nil }

func (noopCacheRepository) GetJSON(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (noopCacheRepository) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}
