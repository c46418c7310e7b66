package repository

import (
	"auth-service/config"
	"auth-service/internal/security"
	"auth-service/internal/util"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepository : чёрный список access-токенов в Redis.
// Ключ — отпечаток токена, TTL — остаток жизни токена на момент выхода,
// так что запись исчезает ровно тогда, когда токен истёк бы сам.
type CacheRepository struct {
	client *config.RedisClient
}

func NewCacheRepository(rdb *config.RedisClient) *CacheRepository {
	return &CacheRepository{rdb}
}

// Deny помещает токен в чёрный список на ttl.
// Токен с неположительным остатком жизни и так не пройдёт проверку подписи.
func (r *CacheRepository) Deny(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	cmd := r.client.Client.Set(ctx, r.key(token), "1", ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка записи в чёрный список Redis", err)
	}

	return nil
}

// IsDenied проверяет, отозван ли токен.
// При недоступном Redis отвечает "не отозван" (fail-open): сервис остаётся
// работоспособным, а окно риска ограничено TTL access-токена.
func (r *CacheRepository) IsDenied(ctx context.Context, token string) bool {
	err := r.client.Client.Get(ctx, r.key(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Printf("ошибка проверки чёрного списка Redis, считаем токен не отозванным: %v", err)
		return false
	}

	return true
}

func (r *CacheRepository) key(token string) string {
	return fmt.Sprintf("blacklist:%s", security.TokenFingerprint(token))
}
