package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"asset-system/internal/repositories"
)

// BaseService - общий кеш для сервисов чтения. Кеш необязателен: при cache == nil всё читается из БД.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, logger: logger}
}

// CacheGet возвращает true, если данные найдены и разобраны.
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		s.logger.Debug("Данные получены из кэша", zap.String("key", key))
		return true
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("Ошибка чтения кэша", zap.String("key", key), zap.Error(err))
	}
	return false
}

// CacheSet - ошибки записи в кеш не прерывают запрос.
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Не удалось сохранить данные в кэш", zap.String("key", key), zap.Error(err))
	}
}

func (s *BaseService) CacheInvalidate(ctx context.Context, prefix string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DelByPrefix(ctx, prefix)
}
