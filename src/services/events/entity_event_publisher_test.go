package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"tasksmith/src/domain"
	"tasksmith/src/infra/kafka"
	"tasksmith/src/services/events"
)

func headerMap(headers []sarama.RecordHeader) map[string]string {
	result := make(map[string]string, len(headers))
	for _, header := range headers {
		result[string(header.Key)] = string(header.Value)
	}
	return result
}

var _ = Describe("EntityEventPublisher", func() {
	var (
		ctx      context.Context
		producer *mocks.SyncProducer
		client   *kafka.KafkaClient
		event    domain.EntityEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		config := mocks.NewTestConfig()
		config.Producer.Return.Successes = true
		producer = mocks.NewSyncProducer(GinkgoT(), config)
		client = kafka.NewKafkaClientWith(zap.NewNop(), producer, nil, 10)

		event = domain.EntityEvent{
			EventID:    "7f1d4c1e-0000-4000-8000-000000000001",
			EventType:  domain.EventEntityCreated,
			EntityType: "Booking",
			EntityID:   42,
			Data:       json.RawMessage(`{"status":"pending","serviceId":3}`),
			OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	})

	AfterEach(func() {
		Expect(client.Close()).To(Succeed())
	})

	It("should key messages by entity and describe them in headers", func() {
		// ARRANGE
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != "entity-events" {
				return fmt.Errorf("unexpected topic %s", msg.Topic)
			}

			key, err := msg.Key.Encode()
			if err != nil || string(key) != "Booking:42" {
				return fmt.Errorf("unexpected key %q", key)
			}

			headers := headerMap(msg.Headers)
			expected := map[string]string{
				"event_type":     "entity.created",
				"entity_type":    "Booking",
				"event_id":       "7f1d4c1e-0000-4000-8000-000000000001",
				"source_service": "tasksmith-api",
				"schema_version": "v1",
				"fields":         "serviceId,status",
			}
			for name, value := range expected {
				if headers[name] != value {
					return fmt.Errorf("header %s = %q, want %q", name, headers[name], value)
				}
			}

			value, err := msg.Value.Encode()
			if err != nil {
				return err
			}
			var decoded domain.EntityEvent
			if err := json.Unmarshal(value, &decoded); err != nil {
				return err
			}
			if decoded.EntityID != 42 || decoded.EventType != domain.EventEntityCreated {
				return fmt.Errorf("unexpected payload %s", value)
			}
			return nil
		})

		publisher := events.NewEntityEventPublisher(zap.NewNop(), client, "entity-events")

		// ACT
		err := publisher.PublishEntityEvents(ctx, []domain.EntityEvent{event})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
	})

	It("should return the delivery error", func() {
		producer.ExpectSendMessageAndFail(errors.New("leader not available"))

		publisher := events.NewEntityEventPublisher(zap.NewNop(), client, "entity-events")

		err := publisher.PublishEntityEvents(ctx, []domain.EntityEvent{event})

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("entity-events"))
	})

	It("should do nothing for an empty batch", func() {
		publisher := events.NewEntityEventPublisher(zap.NewNop(), client, "entity-events")

		Expect(publisher.PublishEntityEvents(ctx, nil)).To(Succeed())
	})

	It("should build the partition key from type and id", func() {
		Expect(events.EventKey("Review", 9)).To(Equal("Review:9"))
	})
})
