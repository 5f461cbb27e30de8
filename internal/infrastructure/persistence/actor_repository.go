package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormActorRepository implements ActorRepository using GORM
type GormActorRepository struct {
	db *gorm.DB
}

// NewGormActorRepository creates a new GormActorRepository
func NewGormActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{db: db}
}

// FindByID loads an actor profile
func (r *GormActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	var actor identity.Actor
	if err := r.db.WithContext(ctx).First(&actor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &actor, nil
}

// Resolve satisfies the workflow profile directory contract
func (r *GormActorRepository) Resolve(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	return r.FindByID(ctx, id)
}

const actorCacheTTL = 5 * time.Minute

// CachedActorRepository fronts an ActorRepository with a Redis cache.
// Profiles are read on every authorized request, so cache misses are
// rare after warmup. Cache failures fall through to the store.
type CachedActorRepository struct {
	inner  identity.ActorRepository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedActorRepository creates a new CachedActorRepository
func NewCachedActorRepository(inner identity.ActorRepository, client *redis.Client, logger *zap.Logger) *CachedActorRepository {
	return &CachedActorRepository{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

// FindByID loads an actor profile, preferring the cache
func (r *CachedActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	key := actorCacheKey(id)

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var actor identity.Actor
		if err := json.Unmarshal(data, &actor); err == nil {
			return &actor, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("actor cache read failed", zap.String("key", key), zap.Error(err))
	}

	actor, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(actor); err == nil {
		if err := r.client.Set(ctx, key, data, actorCacheTTL).Err(); err != nil {
			r.logger.Warn("actor cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return actor, nil
}

// Resolve satisfies the workflow profile directory contract
func (r *CachedActorRepository) Resolve(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	return r.FindByID(ctx, id)
}

// Invalidate drops a cached profile, used after role changes
func (r *CachedActorRepository) Invalidate(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, actorCacheKey(id)).Err()
}

func actorCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("actor:profile:%s", id)
}
