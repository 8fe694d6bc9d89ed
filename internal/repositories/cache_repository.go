package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше или срок его жизни истёк.
var ErrCacheMiss = errors.New("cache miss")

type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// GetJSON раскладывает сохранённый JSON в dest; ErrCacheMiss, если ключа нет.
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// DelByPrefix удаляет все ключи, начинающиеся с prefix.
	DelByPrefix(ctx context.Context, prefix string) error
}
