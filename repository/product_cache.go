package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cart-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProductCachePrefix is the Redis key prefix for cached products.
const ProductCachePrefix = "catalog:product:"

// DefaultProductCacheTTL applies when no TTL is configured.
const DefaultProductCacheTTL = 10 * time.Minute

// CachedCatalogRepository is a cache-aside layer over a CatalogRepository.
// Redis errors never fail a lookup; the wrapped repository is used instead.
type CachedCatalogRepository struct {
	next   CatalogRepository
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalogRepository wraps next with a Redis cache. A nil client
// disables caching and returns next unchanged.
func NewCachedCatalogRepository(next CatalogRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) CatalogRepository {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	return &CachedCatalogRepository{next: next, redis: client, ttl: ttl, logger: logger}
}

func (r *CachedCatalogRepository) FindProductByID(ctx context.Context, id uint) (*models.Product, error) {
	key := productCacheKey(id)

	if cached, err := r.redis.Get(ctx, key).Result(); err == nil {
		var p models.Product
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
		r.logger.Warn("Failed to unmarshal cached product", zap.Uint("product_id", id))
	} else if err != redis.Nil {
		r.logger.Warn("Product cache read failed", zap.Uint("product_id", id), zap.Error(err))
	}

	p, err := r.next.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.setAsync(key, p)
	return p, nil
}

// ListProducts is not cached; pages change with every catalog update.
func (r *CachedCatalogRepository) ListProducts(ctx context.Context, page, limit int, categorySlug string) ([]models.Product, int64, error) {
	return r.next.ListProducts(ctx, page, limit, categorySlug)
}

func (r *CachedCatalogRepository) setAsync(key string, p *models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn("Failed to marshal product for cache", zap.Uint("product_id", p.ID), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
		}
	}()
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", ProductCachePrefix, id)
}
