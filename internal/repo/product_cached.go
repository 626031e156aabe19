package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

const productListKey = "products:all"

// Cache is the key/value store used by CachedProductRepository.
// redissvc.RedisService implements it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedProductRepository serves reads from a cache in front of another
// repository. Every write invalidates the list and the written product.
// Cache failures are logged and fall through to the underlying repository.
//
// A read that started before a write never stores its result after that
// write's invalidation: fills and invalidations share fillMu, and a fill is
// dropped once the write generation has moved. Other processes sharing the
// cache are only bounded by the TTL.
type CachedProductRepository struct {
	next   ProductRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger

	fillMu     sync.Mutex
	generation uint64
}

func NewCachedProductRepository(next ProductRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "product_cache").Logger(),
	}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *CachedProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	created, err := r.next.Create(ctx, p)
	if err != nil {
		return created, err
	}
	r.invalidate(ctx, productListKey)
	return created, nil
}

func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	hit, err := r.cache.GetJSON(ctx, productListKey, &products)
	if err != nil {
		r.logger.Warn().Err(err).Msg("cache read failed")
	}
	if hit {
		return products, nil
	}

	gen := r.currentGeneration()
	products, err = r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, gen, productListKey, products)
	return products, nil
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	hit, err := r.cache.GetJSON(ctx, productKey(id), &p)
	if err != nil {
		r.logger.Warn().Err(err).Int("id", id).Msg("cache read failed")
	}
	if hit {
		return p, nil
	}

	gen := r.currentGeneration()
	p, err = r.next.GetByID(ctx, id)
	if err != nil {
		return p, err
	}
	r.fill(ctx, gen, productKey(id), p)
	return p, nil
}

func (r *CachedProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	updated, err := r.next.Update(ctx, p)
	if err != nil {
		return updated, err
	}
	r.invalidate(ctx, productListKey, productKey(p.ID))
	return updated, nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, productListKey, productKey(id))
	return nil
}

func (r *CachedProductRepository) currentGeneration() uint64 {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	return r.generation
}

// fill stores v unless a write has been invalidated since gen was read.
func (r *CachedProductRepository) fill(ctx context.Context, gen uint64, key string, v any) {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	if r.generation != gen {
		r.logger.Debug().Str("key", key).Msg("skipping cache fill after concurrent write")
		return
	}
	if err := r.cache.SetJSON(ctx, key, v, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate runs after the write has committed.
func (r *CachedProductRepository) invalidate(ctx context.Context, keys ...string) {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	r.generation++
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
