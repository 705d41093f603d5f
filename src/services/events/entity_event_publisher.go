package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"tasksmith/src/domain"
	"tasksmith/src/infra/kafka"

	"go.uber.org/zap"
)

const (
	SourceService = "tasksmith-api"
	SchemaVersion = "v1"
)

// Producer é a parte do KafkaClient usada aqui.
type Producer interface {
	Producer(messages []kafka.Message, topic string) error
}

type EntityEventPublisher struct {
	logger   *zap.Logger
	producer Producer
	topic    string
}

func NewEntityEventPublisher(logger *zap.Logger, producer Producer, topic string) *EntityEventPublisher {
	return &EntityEventPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// PublishEntityEvents publica um lote de eventos. A chave é "<tipo>:<id>",
// então os eventos de uma mesma entidade caem na mesma partição, em ordem.
func (p *EntityEventPublisher) PublishEntityEvents(ctx context.Context, events []domain.EntityEvent) error {
	if len(events) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal entity event",
				zap.String("event_id", event.EventID),
				zap.Int64("entity_id", event.EntityID),
				zap.Error(err))
			continue
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     EventKey(event.EntityType, event.EntityID),
			Value:   eventBytes,
			Headers: createEventHeaders(event),
		})
	}

	if err := p.producer.Producer(kafkaMessages, p.topic); err != nil {
		return fmt.Errorf("failed to publish entity events to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published entity events",
		zap.String("topic", p.topic),
		zap.Int("events_count", len(kafkaMessages)))

	return nil
}

func EventKey(entityType string, entityID int64) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

// createEventHeaders monta os headers usados pelos consumers para filtrar sem
// decodificar o payload.
func createEventHeaders(event domain.EntityEvent) map[string]string {
	headers := map[string]string{
		"event_type":     event.EventType,
		"entity_type":    event.EntityType,
		"event_id":       event.EventID,
		"source_service": SourceService,
		"schema_version": SchemaVersion,
	}

	if fields := dataFields(event.Data); len(fields) > 0 {
		headers["fields"] = strings.Join(fields, ",")
	}

	return headers
}

func dataFields(data json.RawMessage) []string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return fields
}
