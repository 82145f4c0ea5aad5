package db

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"car-inventory/internal/cache"
	"car-inventory/internal/models"
)

type CachedCarRepository struct {
	repo  *CarRepository
	cache *cache.RedisCache
}

func NewCachedCarRepository(repo *CarRepository, cache *cache.RedisCache) *CachedCarRepository {
	return &CachedCarRepository{
		repo:  repo,
		cache: cache,
	}
}

// Cache key helpers
func carKey(id string) string {
	return fmt.Sprintf("car:%s", id)
}

func allCarsKey() string {
	return "cars:all"
}

// GetAll returns all cars (with caching)
func (r *CachedCarRepository) GetAll(ctx context.Context) ([]models.Car, error) {
	cacheKey := allCarsKey()

	// Try cache first
	var cars []models.Car
	err := r.cache.Get(ctx, cacheKey, &cars)
	if err == nil {
		log.Println("📦 Cache HIT: all cars")
		return cars, nil
	}

	// Cache miss - get from database
	log.Println("💾 Cache MISS: all cars - fetching from DB")
	cars, err = r.repo.GetAll()
	if err != nil {
		return nil, err
	}

	// Store in cache
	if err := r.cache.Set(ctx, cacheKey, cars); err != nil {
		log.Printf("⚠️ Failed to cache cars: %v", err)
	}

	return cars, nil
}

// GetByID returns a single car (with caching)
func (r *CachedCarRepository) GetByID(ctx context.Context, id string) (*models.Car, error) {
	cacheKey := carKey(id)

	// Try cache first
	var car models.Car
	err := r.cache.Get(ctx, cacheKey, &car)
	if err == nil {
		log.Printf("📦 Cache HIT: car %s", id)
		return &car, nil
	}

	if err != redis.Nil {
		log.Printf("⚠️ Cache error: %v", err)
	}

	// Cache miss - get from database
	log.Printf("💾 Cache MISS: car %s - fetching from DB", id)
	c, err := r.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, nil
	}

	// Store in cache
	if err := r.cache.Set(ctx, cacheKey, c); err != nil {
		log.Printf("⚠️ Failed to cache car: %v", err)
	}

	return c, nil
}

// Create inserts a new car and invalidates cache
func (r *CachedCarRepository) Create(ctx context.Context, car *models.Car) error {
	if err := r.repo.Create(car); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, allCarsKey()); err != nil {
		log.Printf("⚠️ Failed to invalidate cache: %v", err)
	}
	log.Println("🗑️ Cache invalidated: all cars")

	return nil
}

// Update rewrites a car and invalidates cache
func (r *CachedCarRepository) Update(ctx context.Context, id string, req models.CarRequest) (*models.Car, error) {
	car, err := r.repo.Update(id, req)
	if err != nil {
		return nil, err
	}

	r.Invalidate(ctx, id)

	return car, nil
}

// Delete removes a car and invalidates cache
func (r *CachedCarRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(id); err != nil {
		return err
	}

	r.Invalidate(ctx, id)

	return nil
}

// IncrementQuantity returns stock and invalidates cache
func (r *CachedCarRepository) IncrementQuantity(ctx context.Context, id string, n int) error {
	if err := r.repo.IncrementQuantity(id, n); err != nil {
		return err
	}

	r.Invalidate(ctx, id)

	return nil
}

// DecrementQuantity takes stock and invalidates cache
func (r *CachedCarRepository) DecrementQuantity(ctx context.Context, id string, n int) error {
	if err := r.repo.DecrementQuantity(id, n); err != nil {
		return err
	}

	r.Invalidate(ctx, id)

	return nil
}

// Invalidate drops the cached entries for the given cars along with the
// catalog listing. The order event consumer calls this when quantities
// move inside a ledger transaction.
func (r *CachedCarRepository) Invalidate(ctx context.Context, ids ...string) {
	for _, id := range ids {
		if err := r.cache.Delete(ctx, carKey(id)); err != nil {
			log.Printf("⚠️ Failed to invalidate cache: %v", err)
		}
	}
	if err := r.cache.Delete(ctx, allCarsKey()); err != nil {
		log.Printf("⚠️ Failed to invalidate cache: %v", err)
	}
	log.Printf("🗑️ Cache invalidated: %d car(s) and all cars", len(ids))
}
