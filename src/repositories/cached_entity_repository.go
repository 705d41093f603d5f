package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"tasksmith/src/domain/entities"
	"tasksmith/src/infra/metrics"
	"tasksmith/src/infra/redis"

	"go.uber.org/zap"
)

const cacheOperationTimeout = 2 * time.Second

// CachedEntityRepository guarda o resultado de List no redis. Toda escrita do
// tipo invalida as chaves registradas. Falhas de cache nunca derrubam a
// requisição: caímos para o banco.
type CachedEntityRepository struct {
	store       EntityStore
	redisClient *redis.RedisClient
	logger      *zap.Logger
	orderBy     string
}

// cachedEntity existe porque Entity serializa na visão achatada, que perde o tipo.
type cachedEntity struct {
	ID        int64           `json:"id"`
	Type      string          `json:"entity_type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewCachedEntityRepository(
	store EntityStore,
	redisClient *redis.RedisClient,
	logger *zap.Logger,
	orderBy string,
) *CachedEntityRepository {
	return &CachedEntityRepository{
		store:       store,
		redisClient: redisClient,
		logger:      logger.With(zap.String("entity_type", store.EntityType())),
		orderBy:     orderBy,
	}
}

func (r *CachedEntityRepository) EntityType() string {
	return r.store.EntityType()
}

func (r *CachedEntityRepository) List(ctx context.Context) ([]entities.Entity, error) {
	cacheKey := r.cacheKey()

	cached, found, err := r.getFromCache(ctx, cacheKey)
	if err != nil {
		metrics.IncCacheLookup(metrics.CacheError)
		r.logger.Warn("Cache error, falling back to database", zap.String("key", cacheKey), zap.Error(err))
	} else if found {
		metrics.IncCacheLookup(metrics.CacheHit)
		r.logger.Debug("Cache HIT", zap.String("key", cacheKey))
		return cached, nil
	} else {
		metrics.IncCacheLookup(metrics.CacheMiss)
		r.logger.Debug("Cache MISS", zap.String("key", cacheKey))
	}

	items, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	r.setInCache(ctx, cacheKey, items)

	return items, nil
}

func (r *CachedEntityRepository) Get(ctx context.Context, id int64) (*entities.Entity, error) {
	return r.store.Get(ctx, id)
}

func (r *CachedEntityRepository) Create(ctx context.Context, data map[string]any) (*entities.Entity, error) {
	created, err := r.store.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *CachedEntityRepository) Update(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error) {
	updated, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return updated, nil
}

func (r *CachedEntityRepository) Remove(ctx context.Context, id int64) (bool, error) {
	removed, err := r.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		r.invalidate(ctx)
	}
	return removed, nil
}

func (r *CachedEntityRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx)
}

// FindWhere filtra a lista em cache em vez de recarregar a tabela.
func (r *CachedEntityRepository) FindWhere(ctx context.Context, conditions map[string]any) ([]entities.Entity, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEntities(all, conditions), nil
}

func (r *CachedEntityRepository) FindOne(ctx context.Context, conditions map[string]any) (*entities.Entity, error) {
	found, err := r.FindWhere(ctx, conditions)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (r *CachedEntityRepository) cacheKey() string {
	hash := md5.Sum([]byte(r.orderBy))
	return fmt.Sprintf("entities:list:%s:%x", r.EntityType(), hash)
}

func registryKey(entityType string) string {
	return "registry:entities:" + entityType
}

func (r *CachedEntityRepository) getFromCache(ctx context.Context, cacheKey string) ([]entities.Entity, bool, error) {
	cachedJSON, found, err := r.redisClient.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return nil, false, err
	}

	var records []cachedEntity
	if err := json.Unmarshal([]byte(cachedJSON), &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	items := make([]entities.Entity, len(records))
	for i, record := range records {
		items[i] = entities.Entity(record)
	}

	return items, true, nil
}

func (r *CachedEntityRepository) setInCache(ctx context.Context, cacheKey string, items []entities.Entity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOperationTimeout)
	defer cancel()

	records := make([]cachedEntity, len(items))
	for i, item := range items {
		records[i] = cachedEntity(item)
	}

	dataJSON, err := json.Marshal(records)
	if err != nil {
		r.logger.Warn("Failed to marshal cache data", zap.String("key", cacheKey), zap.Error(err))
		return
	}

	err = r.redisClient.SetWithRegistry(ctx, cacheKey, string(dataJSON), []string{registryKey(r.EntityType())})
	if err != nil {
		r.logger.Warn("Failed to set cache", zap.String("key", cacheKey), zap.Error(err))
		return
	}

	r.logger.Debug("Cache SET", zap.String("key", cacheKey), zap.Int("count", len(items)))
}

func (r *CachedEntityRepository) invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOperationTimeout)
	defer cancel()

	if err := InvalidateEntityType(ctx, r.redisClient, r.EntityType()); err != nil {
		r.logger.Warn("Failed to invalidate cache", zap.Error(err))
	}
}

// InvalidateEntityType apaga todas as listas em cache de um tipo.
func InvalidateEntityType(ctx context.Context, redisClient *redis.RedisClient, entityType string) error {
	registry := registryKey(entityType)

	keys, err := redisClient.GetSetMembers(ctx, registry)
	if err != nil {
		return fmt.Errorf("failed to get registry data: %w", err)
	}

	return redisClient.InvalidateKeys(ctx, append(keys, registry))
}
