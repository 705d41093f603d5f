package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"tasksmith/src/domain"
	"tasksmith/src/infra/debezium"
	"tasksmith/src/infra/kafka"

	"go.uber.org/zap"
)

// EntityEventHandler aplica os efeitos colaterais de um evento de entidade.
type EntityEventHandler interface {
	HandleEvent(ctx context.Context, event domain.EntityEvent) error
}

type EntityEventsConsumer struct {
	logger  *zap.Logger
	handler EntityEventHandler
	// entityTypes filtra pelo header entity_type; vazio aceita todos.
	entityTypes map[string]bool
}

func NewEntityEventsConsumer(logger *zap.Logger, handler EntityEventHandler, entityTypes ...string) *EntityEventsConsumer {
	filter := make(map[string]bool, len(entityTypes))
	for _, entityType := range entityTypes {
		filter[entityType] = true
	}

	return &EntityEventsConsumer{
		logger:      logger,
		handler:     handler,
		entityTypes: filter,
	}
}

func (c *EntityEventsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting entity events consumer", zap.String("topic", topic))

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

// HandleMessages processa um lote. Mensagens malformadas são descartadas; um
// erro do handler devolve o lote inteiro para reprocessamento.
func (c *EntityEventsConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	handled := 0

	for _, msg := range messages {
		if !c.accepts(msg.Headers["entity_type"]) {
			continue
		}

		var event domain.EntityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to unmarshal entity event",
				zap.String("key", msg.Key),
				zap.Error(err))
			continue
		}

		if err := c.handler.HandleEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to handle event %s (%s %d): %w", event.EventID, event.EntityType, event.EntityID, err)
		}
		handled++
	}

	if handled > 0 {
		c.logger.Debug("Entity events handled",
			zap.Int("handled", handled),
			zap.Int("received", len(messages)))
	}

	return nil
}

// StartCDC consome o changelog da tabela entities em vez do tópico de eventos.
func (c *EntityEventsConsumer) StartCDC(ctx context.Context, cdcClient *debezium.CDCClient) error {
	return cdcClient.ConsumeCDCEvents(ctx, c.HandleCDCEvent)
}

// HandleCDCEvent converte a linha alterada num EntityEvent e aplica o handler.
func (c *EntityEventsConsumer) HandleCDCEvent(ctx context.Context, cdcEvent *debezium.CDCEvent) error {
	event, err := debezium.ToEntityEvent(cdcEvent)
	if err != nil {
		c.logger.Error("Failed to convert CDC event",
			zap.String("operation", cdcEvent.Operation),
			zap.Error(err))
		return nil
	}

	if !c.accepts(event.EntityType) {
		return nil
	}

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to handle CDC event %s: %w", event.EventID, err)
	}

	return nil
}

func (c *EntityEventsConsumer) accepts(entityType string) bool {
	return len(c.entityTypes) == 0 || c.entityTypes[entityType]
}
