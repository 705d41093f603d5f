package debezium_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"tasksmith/src/domain"
	"tasksmith/src/infra/debezium"
	"tasksmith/src/infra/kafka"
)

const reviewRow = `{
	"before": null,
	"after": {"id": 7, "entity_type": "Review", "data": "{\"serviceId\": 3, \"rating\": 5}"},
	"source": {"connector": "postgresql", "table": "entities", "lsn": 1234, "snapshot": "false"},
	"op": "c",
	"ts_ms": 1700000000000
}`

var _ = Describe("CDCSerializer", func() {
	var serializer *debezium.CDCSerializer

	BeforeEach(func() {
		serializer = &debezium.CDCSerializer{IncludeTables: []string{"entities", "archive_*"}}
	})

	DescribeTable("IsTableMonitored",
		func(table string, expected bool) {
			Expect(serializer.IsTableMonitored(table)).To(Equal(expected))
		},
		Entry("exact match", "entities", true),
		Entry("prefix match", "archive_2025", true),
		Entry("other table", "users", false),
	)

	It("should parse the plain envelope", func() {
		event, err := serializer.ParseCDCEvent([]byte(reviewRow))

		Expect(err).NotTo(HaveOccurred())
		Expect(event.Operation).To(Equal(debezium.OperationCreate))
		Expect(event.Source.Table).To(Equal("entities"))
		Expect(event.Row()["entity_type"]).To(Equal("Review"))
	})

	It("should unwrap the schema/payload envelope", func() {
		event, err := serializer.ParseCDCEvent([]byte(`{"schema": {}, "payload": ` + reviewRow + `}`))

		Expect(err).NotTo(HaveOccurred())
		Expect(event.Source.LSN).To(Equal(int64(1234)))
	})

	DescribeTable("rejects invalid envelopes",
		func(raw string) {
			_, err := serializer.ParseCDCEvent([]byte(raw))
			Expect(err).To(HaveOccurred())
		},
		Entry("not json", `nope`),
		Entry("missing table", `{"op": "c", "after": {}}`),
		Entry("unknown operation", `{"op": "x", "after": {}, "source": {"table": "entities"}}`),
		Entry("delete without before", `{"op": "d", "source": {"table": "entities"}}`),
		Entry("create without after", `{"op": "c", "source": {"table": "entities"}}`),
	)

	It("should convert a row into an entity event", func() {
		// ARRANGE
		event, err := serializer.ParseCDCEvent([]byte(reviewRow))
		Expect(err).NotTo(HaveOccurred())

		// ACT
		entityEvent, err := debezium.ToEntityEvent(event)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(entityEvent.EventType).To(Equal(domain.EventEntityCreated))
		Expect(entityEvent.EntityType).To(Equal("Review"))
		Expect(entityEvent.EntityID).To(Equal(int64(7)))
		Expect(entityEvent.EventID).To(Equal("cdc-1234-7-c"))
		Expect(entityEvent.OccurredAt).To(Equal(time.UnixMilli(1700000000000).UTC()))
		Expect(entityEvent.Data).To(MatchJSON(`{"serviceId": 3, "rating": 5}`))
	})

	It("should use the before image on deletes", func() {
		event := &debezium.CDCEvent{
			Operation: debezium.OperationDelete,
			Before:    map[string]any{"id": float64(9)},
		}

		entityEvent, err := debezium.ToEntityEvent(event)

		Expect(err).NotTo(HaveOccurred())
		Expect(entityEvent.EventType).To(Equal(domain.EventEntityDeleted))
		Expect(entityEvent.EntityID).To(Equal(int64(9)))
		Expect(entityEvent.EntityType).To(BeEmpty())
		Expect(entityEvent.Data).To(BeNil())
	})

	It("should fail when the data column is not JSON", func() {
		event := &debezium.CDCEvent{
			Operation: debezium.OperationUpdate,
			After:     map[string]any{"id": float64(1), "data": "{broken"},
		}

		_, err := debezium.ToEntityEvent(event)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CDCClient", func() {
	var (
		ctx    context.Context
		client *debezium.CDCClient
		seen   []*debezium.CDCEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = debezium.NewCDCClient(zap.NewNop(), "cdc.public.entities", nil, []string{"entities"})
		seen = nil
	})

	collect := func(_ context.Context, event *debezium.CDCEvent) error {
		seen = append(seen, event)
		return nil
	}

	It("should skip tombstones, invalid messages and unmonitored tables", func() {
		messages := []kafka.Message{
			{Key: "7", Value: []byte(reviewRow)},
			{Key: "7", Value: nil},
			{Key: "8", Value: []byte("garbage")},
			{Key: "9", Value: []byte(`{"op": "c", "after": {"id": 1}, "source": {"table": "users"}}`)},
		}

		err := client.ProcessMessages(ctx, messages, collect)

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(1))
		Expect(seen[0].Row()["id"]).To(Equal(float64(7)))
	})

	It("should return the handler error so the batch is retried", func() {
		failing := func(context.Context, *debezium.CDCEvent) error {
			return errors.New("boom")
		}

		err := client.ProcessMessages(ctx, []kafka.Message{{Value: []byte(reviewRow)}}, failing)

		Expect(err).To(MatchError(ContainSubstring("boom")))
	})
})
