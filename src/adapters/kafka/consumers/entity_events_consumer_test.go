package consumers_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"tasksmith/src/adapters/kafka/consumers"
	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"
	"tasksmith/src/infra/kafka"
	"tasksmith/src/repositories"
	"tasksmith/src/services/entity"
	"tasksmith/src/test_artefacts/stubs"
	"tasksmith/src/test_artefacts/test_seeder"
)

func eventMessage(event domain.EntityEvent) kafka.Message {
	value, err := json.Marshal(event)
	Expect(err).NotTo(HaveOccurred())

	return kafka.Message{
		Key:     event.EntityType,
		Value:   value,
		Headers: map[string]string{"entity_type": event.EntityType, "event_type": event.EventType},
	}
}

var _ = Describe("EntityEventsConsumer", func() {
	var (
		ctx      context.Context
		executor repositories.QueryExecutor
		factory  *repositories.RepositoryFactory
		service  *entity.EntityService
		consumer *consumers.EntityEventsConsumer
		target   *entities.Entity
	)

	BeforeEach(func() {
		ctx = context.Background()
		executor = test_seeder.NewSQLiteExecutor(ctx)
		factory = repositories.NewRepositoryFactory(executor, zap.NewNop(), nil)
		service = entity.NewEntityService(factory, nil, zap.NewNop())
		consumer = consumers.NewEntityEventsConsumer(zap.NewNop(), service, entities.ReviewType)

		var err error
		target, err = service.Create(ctx, entities.ServiceType, stubs.ServiceData())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		executor.Close()
	})

	It("should recompute the service aggregates from review events", func() {
		// ARRANGE
		// grava as reviews direto no store, como se viessem de outra instância da API
		reviews := factory.For(repositories.RepositoryOptions{EntityType: entities.ReviewType})
		var messages []kafka.Message
		for i, rating := range []int{5, 3} {
			review, err := reviews.Create(ctx, stubs.ReviewData(int64(i+1), target.ID, rating))
			Expect(err).NotTo(HaveOccurred())

			messages = append(messages, eventMessage(domain.EntityEvent{
				EventID:    "evt",
				EventType:  domain.EventEntityCreated,
				EntityType: entities.ReviewType,
				EntityID:   review.ID,
				Data:       review.Data,
			}))
		}

		// ACT
		err := consumer.HandleMessages(ctx, messages)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		found, err := service.Get(ctx, entities.ServiceType, target.ID)
		Expect(err).NotTo(HaveOccurred())
		stats, err := entities.Decode[entities.Service](*found)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.ReviewCount).To(Equal(2))
		Expect(stats.ProviderRating).To(Equal(4.0))
	})

	It("should skip other entity types and malformed payloads", func() {
		messages := []kafka.Message{
			eventMessage(domain.EntityEvent{EventType: domain.EventEntityCreated, EntityType: entities.BookingType, EntityID: 1}),
			{Key: "Review:1", Value: []byte("not json"), Headers: map[string]string{"entity_type": entities.ReviewType}},
		}

		Expect(consumer.HandleMessages(ctx, messages)).To(Succeed())

		found, err := service.Get(ctx, entities.ServiceType, target.ID)
		Expect(err).NotTo(HaveOccurred())
		stats, err := entities.Decode[entities.Service](*found)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.ReviewCount).To(BeZero())
	})
})
