package debezium

import (
	"context"
	"fmt"

	"tasksmith/src/infra/kafka"

	"go.uber.org/zap"
)

// CDCEventHandler is the function signature for handling CDC events
type CDCEventHandler func(ctx context.Context, event *CDCEvent) error

// CDCClient implements CDC event consumption using Kafka
type CDCClient struct {
	logger      *zap.Logger
	kafkaClient *kafka.KafkaClient
	serializer  *CDCSerializer
	topic       string
}

func NewCDCClient(logger *zap.Logger, topic string, kafkaClient *kafka.KafkaClient, tables []string) *CDCClient {
	return &CDCClient{
		logger:      logger,
		kafkaClient: kafkaClient,
		serializer:  &CDCSerializer{IncludeTables: tables},
		topic:       topic,
	}
}

// ConsumeCDCEvents starts consuming CDC events and calls handler for each valid event
func (c *CDCClient) ConsumeCDCEvents(ctx context.Context, handler CDCEventHandler) error {
	c.logger.Info("Starting CDC event consumption", zap.String("topic", c.topic))

	kafkaHandler := func(messages []kafka.Message) error {
		return c.ProcessMessages(ctx, messages, handler)
	}

	return c.kafkaClient.Consumer(ctx, kafkaHandler, c.topic)
}

// ProcessMessages trata um lote. Tombstones e mensagens inválidas são
// descartados; erro do handler devolve o lote para reprocessamento.
func (c *CDCClient) ProcessMessages(ctx context.Context, messages []kafka.Message, handler CDCEventHandler) error {
	processedCount := 0
	skippedCount := 0
	errorCount := 0

	for _, msg := range messages {
		// tombstone emitido depois de um delete
		if len(msg.Value) == 0 {
			skippedCount++
			continue
		}

		cdcEvent, err := c.serializer.ParseCDCEvent(msg.Value)
		if err != nil {
			c.logger.Error("Failed to parse CDC message",
				zap.String("key", msg.Key),
				zap.Int("value_length", len(msg.Value)),
				zap.Error(err))
			errorCount++
			continue
		}

		if !c.serializer.ShouldProcessEvent(cdcEvent) {
			skippedCount++
			continue
		}

		if err := handler(ctx, cdcEvent); err != nil {
			return fmt.Errorf("CDC event handler failed (table %s, op %s): %w", cdcEvent.Source.Table, cdcEvent.Operation, err)
		}
		processedCount++
	}

	if len(messages) > 0 {
		c.logger.Debug("Completed CDC messages batch processing",
			zap.Int("total", len(messages)),
			zap.Int("processed", processedCount),
			zap.Int("skipped", skippedCount),
			zap.Int("errors", errorCount))
	}

	return nil
}
