package consumers_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"tasksmith/src/adapters/kafka/consumers"
	"tasksmith/src/domain/entities"
	"tasksmith/src/infra/debezium"
	"tasksmith/src/repositories"
	"tasksmith/src/services/entity"
	"tasksmith/src/test_artefacts/stubs"
	"tasksmith/src/test_artefacts/test_seeder"
)

var _ = Describe("EntityEventsConsumer CDC", func() {
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

	It("should refresh the service rating from a review row", func() {
		// ARRANGE
		reviews := factory.For(repositories.RepositoryOptions{EntityType: entities.ReviewType})
		review, err := reviews.Create(ctx, stubs.ReviewData(1, target.ID, 4))
		Expect(err).NotTo(HaveOccurred())

		cdcEvent := &debezium.CDCEvent{
			Operation: debezium.OperationCreate,
			Source:    debezium.CDCSource{Table: "entities", LSN: 10},
			After: map[string]any{
				"id":          float64(review.ID),
				"entity_type": entities.ReviewType,
				"data":        string(review.Data),
			},
		}

		// ACT
		err = consumer.HandleCDCEvent(ctx, cdcEvent)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		found, err := service.Get(ctx, entities.ServiceType, target.ID)
		Expect(err).NotTo(HaveOccurred())
		stats, err := entities.Decode[entities.Service](*found)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.ReviewCount).To(Equal(1))
		Expect(stats.ProviderRating).To(Equal(4.0))
	})

	It("should ignore rows of other types and rows it cannot convert", func() {
		other := &debezium.CDCEvent{
			Operation: debezium.OperationUpdate,
			Source:    debezium.CDCSource{Table: "entities"},
			After:     map[string]any{"id": float64(target.ID), "entity_type": entities.ServiceType, "data": "{}"},
		}
		broken := &debezium.CDCEvent{
			Operation: debezium.OperationCreate,
			Source:    debezium.CDCSource{Table: "entities"},
			After:     map[string]any{"entity_type": entities.ReviewType},
		}

		Expect(consumer.HandleCDCEvent(ctx, other)).To(Succeed())
		Expect(consumer.HandleCDCEvent(ctx, broken)).To(Succeed())
	})
})
