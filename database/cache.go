package database

import (
	"context"
	"fmt"
	"time"

	"financeApp/config"

	"github.com/redis/go-redis/v9"
)

// Cache представляет кеш вычисленных сводок поверх Redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache создает новое подключение к Redis
func NewCache(cfg *config.Config) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	return &Cache{
		client: rdb,
		ttl:    time.Duration(cfg.Redis.CacheTTL) * time.Minute,
	}
}

// SummaryKey формирует ключ кеша сводки по долгам пользователя
func SummaryKey(userID uint) string {
	return fmt.Sprintf("debt:summary:%d", userID)
}

// Get возвращает значение по ключу
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set сохраняет значение с настроенным TTL
func (c *Cache) Set(ctx context.Context, key string, value string) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

// Invalidate удаляет значение по ключу
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close закрывает подключение к Redis
func (c *Cache) Close() error {
	return c.client.Close()
}
