package repositories

import (
	"context"

	"tasksmith/src/infra/redis"

	"go.uber.org/zap"
)

// RepositoryFactory monta os stores por tipo sobre um único executor. Com
// redis configurado, cada store ganha o cache de listas.
type RepositoryFactory struct {
	executor    QueryExecutor
	logger      *zap.Logger
	redisClient *redis.RedisClient
}

func NewRepositoryFactory(executor QueryExecutor, logger *zap.Logger, redisClient *redis.RedisClient) *RepositoryFactory {
	return &RepositoryFactory{
		executor:    executor,
		logger:      logger,
		redisClient: redisClient,
	}
}

func (f *RepositoryFactory) For(options RepositoryOptions) EntityStore {
	repository := NewEntityRepository(f.executor, f.logger, options)
	if f.redisClient == nil {
		return repository
	}
	return NewCachedEntityRepository(repository, f.redisClient, f.logger, options.OrderBy)
}

func (f *RepositoryFactory) LookupEntityType(ctx context.Context, id int64) (string, bool, error) {
	return LookupEntityType(ctx, f.executor, id)
}

// Ping responde pelo banco. O cache é opcional: redis fora do ar só gera
// warning, as leituras caem direto no banco.
func (f *RepositoryFactory) Ping(ctx context.Context) error {
	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			f.logger.Warn("Redis health check failed", zap.Error(err))
		}
	}

	return f.executor.Ping(ctx)
}
