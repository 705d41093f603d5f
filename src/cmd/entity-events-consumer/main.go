package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasksmith/src/adapters/kafka/consumers"
	"tasksmith/src/domain/entities"
	"tasksmith/src/helper/env"
	"tasksmith/src/infra/debezium"
	"tasksmith/src/infra/kafka"
	"tasksmith/src/infra/logger"
	"tasksmith/src/infra/redis"
	"tasksmith/src/repositories"
	"tasksmith/src/services/entity"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Consome os eventos de entidade e mantém os agregados de review
// (Service.providerRating e Service.reviewCount).
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
			newRepositoryFactory,
			newEntityService,
			newEntityEventsConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(env.GetString("LOG_LEVEL", "info"))
}

func newQueryExecutor(lc fx.Lifecycle, logger *zap.Logger) (repositories.QueryExecutor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	executor, err := repositories.OpenExecutor(ctx, logger,
		env.MustGetString("DATABASE_URL"),
		env.GetBool("DATABASE_SSL", false),
		env.GetInt("DB_MAX_POOL_CONNECTIONS", 10),
	)
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

// O consumer grava nos mesmos tipos que a API lista, então precisa invalidar
// o mesmo cache quando ele existe.
func newRedisClient(lc fx.Lifecycle) *redis.RedisClient {
	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		return nil
	}

	client := redis.NewRedisClient(redisHosts,
		env.GetInt("REDIS_POOL_SIZE", 10),
		env.GetSeconds("REDIS_DEFAULT_TTL_SECONDS", 120),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}

func newKafkaClient(logger *zap.Logger) (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_ENTITY_EVENTS_CONSUMER_GROUP_ID")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(logger, brokers, groupID, batchSize)
}

func newRepositoryFactory(executor repositories.QueryExecutor, redisClient *redis.RedisClient, logger *zap.Logger) *repositories.RepositoryFactory {
	return repositories.NewRepositoryFactory(executor, logger, redisClient)
}

// Aqui o serviço só aplica eventos, não publica nenhum.
func newEntityService(factory *repositories.RepositoryFactory, logger *zap.Logger) *entity.EntityService {
	return entity.NewEntityService(factory, nil, logger)
}

func newEntityEventsConsumer(logger *zap.Logger, entityService *entity.EntityService) *consumers.EntityEventsConsumer {
	return consumers.NewEntityEventsConsumer(logger, entityService, entities.ReviewType)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *zap.Logger,
	kafkaClient *kafka.KafkaClient,
	entityEventsConsumer *consumers.EntityEventsConsumer,
) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Com KAFKA_CDC_TOPIC os eventos vêm do debezium (tabela entities)
			// em vez do tópico publicado pela API.
			cdcTopic := env.GetString("KAFKA_CDC_TOPIC")
			topic := env.GetString("KAFKA_ENTITY_EVENTS_TOPIC", "tasksmith.entity-events")

			// Start consumer in background
			go func() {
				var err error
				if cdcTopic != "" {
					cdcClient := debezium.NewCDCClient(logger, cdcTopic, kafkaClient, []string{"entities"})
					err = entityEventsConsumer.StartCDC(ctx, cdcClient)
				} else {
					err = entityEventsConsumer.Start(ctx, kafkaClient, topic)
				}
				if err != nil {
					logger.Error("Consumer failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
