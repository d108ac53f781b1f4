package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msseason/ai-grant-finder/internal/models"
)

type CacheService interface {
	// Application stats caching; scope is "all" or a user id.
	GetStats(ctx context.Context, scope string) (*models.ApplicationStats, error)
	SetStats(ctx context.Context, scope string, stats *models.ApplicationStats, ttl time.Duration) error
	DeleteStats(ctx context.Context, scope string) error

	// Grants catalog caching
	GetGrantCatalog(ctx context.Context) ([]models.Grant, error)
	SetGrantCatalog(ctx context.Context, grants []models.Grant, ttl time.Duration) error
	GetGrantorAnalysis(ctx context.Context) (map[string]models.GrantorAnalysis, error)
	SetGrantorAnalysis(ctx context.Context, analysis map[string]models.GrantorAnalysis, ttl time.Duration) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Cache invalidation
	InvalidateAllCache(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, addr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetStats(ctx context.Context, scope string) (*models.ApplicationStats, error) {
	key := fmt.Sprintf("grantfinder:stats:%s", scope)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.ApplicationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetStats(ctx context.Context, scope string, stats *models.ApplicationStats, ttl time.Duration) error {
	key := fmt.Sprintf("grantfinder:stats:%s", scope)
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteStats(ctx context.Context, scope string) error {
	key := fmt.Sprintf("grantfinder:stats:%s", scope)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetGrantCatalog(ctx context.Context) ([]models.Grant, error) {
	data, err := r.client.Get(ctx, "grantfinder:grants:catalog").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var grants []models.Grant
	if err := json.Unmarshal(data, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *redisCacheService) SetGrantCatalog(ctx context.Context, grants []models.Grant, ttl time.Duration) error {
	data, err := json.Marshal(grants)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "grantfinder:grants:catalog", data, ttl).Err()
}

func (r *redisCacheService) GetGrantorAnalysis(ctx context.Context) (map[string]models.GrantorAnalysis, error) {
	data, err := r.client.Get(ctx, "grantfinder:grants:analysis").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var analysis map[string]models.GrantorAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

func (r *redisCacheService) SetGrantorAnalysis(ctx context.Context, analysis map[string]models.GrantorAnalysis, ttl time.Duration) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "grantfinder:grants:analysis", data, ttl).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateAllCache(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "grantfinder:*").Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
