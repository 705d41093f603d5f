package main

import (
	"context"
	"log"
	"net/http"
	"time"

	httpadapter "tasksmith/src/adapters/http"
	"tasksmith/src/helper/env"
	"tasksmith/src/infra/kafka"
	"tasksmith/src/infra/logger"
	"tasksmith/src/infra/metrics"
	"tasksmith/src/infra/redis"
	"tasksmith/src/repositories"
	"tasksmith/src/services/entity"
	"tasksmith/src/services/events"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := env.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Providers
		fx.Provide(
			newLogger,
			newQueryExecutor,
			newRedisClient,
			newKafkaClient,
			newEventPublisher,
			newRepositoryFactory,
			newEntityService,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(env.GetString("LOG_LEVEL", "info"))
}

func newQueryExecutor(lc fx.Lifecycle, logger *zap.Logger) (repositories.QueryExecutor, error) {
	databaseURL := env.MustGetString("DATABASE_URL")
	ssl := env.GetBool("DATABASE_SSL", false)
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	executor, err := repositories.OpenExecutor(ctx, logger, databaseURL, ssl, maxConnections)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			executor.Close()
			return nil
		},
	})

	return executor, nil
}

// newRedisClient devolve nil quando REDIS_HOSTS não está definido: o cache é opcional.
func newRedisClient(lc fx.Lifecycle, logger *zap.Logger) *redis.RedisClient {
	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		logger.Info("REDIS_HOSTS not set, entity list cache disabled")
		return nil
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := env.GetSeconds("REDIS_DEFAULT_TTL_SECONDS", 120)

	client := redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}

// newKafkaClient devolve nil quando KAFKA_BROKERS não está definido; nesse caso
// os agregados de review são recalculados dentro da própria requisição.
func newKafkaClient(lc fx.Lifecycle, logger *zap.Logger) (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		logger.Info("KAFKA_BROKERS not set, entity events will not be published")
		return nil, nil
	}

	client, err := kafka.NewKafkaClient(logger, brokers, "", env.GetInt("KAFKA_BATCH_SIZE", 100))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func newEventPublisher(logger *zap.Logger, kafkaClient *kafka.KafkaClient) entity.EventPublisher {
	if kafkaClient == nil {
		return nil
	}

	topic := env.GetString("KAFKA_ENTITY_EVENTS_TOPIC", "tasksmith.entity-events")
	return events.NewEntityEventPublisher(logger, kafkaClient, topic)
}

func newRepositoryFactory(executor repositories.QueryExecutor, redisClient *redis.RedisClient, logger *zap.Logger) *repositories.RepositoryFactory {
	return repositories.NewRepositoryFactory(executor, logger, redisClient)
}

func newEntityService(factory *repositories.RepositoryFactory, publisher entity.EventPublisher, logger *zap.Logger) *entity.EntityService {
	return entity.NewEntityService(factory, publisher, logger)
}

func newServer(logger *zap.Logger, entityService *entity.EntityService) *httpadapter.Server {
	metrics.Register()

	port := env.GetInt("PORT", 3001)

	return httpadapter.NewServer(logger, port, entityService)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *zap.Logger, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					logger.Error("Server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}
			logger.Info("Server exited gracefully")
			return nil
		},
	})
}
