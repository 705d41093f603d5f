package entities_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tasksmith/src/domain/entities"
	"tasksmith/src/test_artefacts/comparer"
)

var _ = Describe("Entity", func() {
	createdAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	Context("MarshalJSON", func() {
		It("should flatten data next to the metadata", func() {
			// ARRANGE
			entity := entities.Entity{
				ID:        7,
				Type:      "Service",
				Data:      json.RawMessage(`{"title":"Plumbing","rating":4.5}`),
				CreatedAt: createdAt,
				UpdatedAt: createdAt,
			}

			// ACT
			raw, err := json.Marshal(entity)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(MatchJSON(`{
				"id": 7,
				"title": "Plumbing",
				"rating": 4.5,
				"created_at": "2025-06-01T10:00:00Z",
				"updated_at": "2025-06-01T10:00:00Z"
			}`))
		})

		It("should let metadata win over colliding data keys", func() {
			entity := entities.Entity{ID: 1, Data: json.RawMessage(`{"id":99,"name":"x"}`), CreatedAt: createdAt, UpdatedAt: createdAt}

			raw, err := json.Marshal(entity)

			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(MatchJSON(`{"id":1,"name":"x","created_at":"2025-06-01T10:00:00Z","updated_at":"2025-06-01T10:00:00Z"}`))
		})

		It("should fail for a non-object payload", func() {
			_, err := json.Marshal(entities.Entity{ID: 1, Data: json.RawMessage(`[1,2]`)})

			Expect(err).To(HaveOccurred())
		})
	})

	Context("UnmarshalJSON", func() {
		It("should split metadata from data", func() {
			// ARRANGE
			raw := []byte(`{"id":3,"title":"Tutoring","created_at":"2025-06-01T10:00:00Z","updated_at":"2025-06-01T10:00:00Z"}`)

			// ACT
			var entity entities.Entity
			err := json.Unmarshal(raw, &entity)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(entity).To(BeComparableTo(entities.Entity{
				ID:        3,
				Data:      json.RawMessage(`{"title":"Tutoring"}`),
				CreatedAt: createdAt,
				UpdatedAt: createdAt,
			}, comparer.JSONRawMessage()))
		})
	})

	Context("Fields", func() {
		It("should expose id as a number and timestamps as time", func() {
			entity := entities.Entity{ID: 3, Data: json.RawMessage(`{"n":1}`), CreatedAt: createdAt, UpdatedAt: createdAt}

			fields := entity.Fields()

			Expect(fields).To(HaveKeyWithValue("id", float64(3)))
			Expect(fields).To(HaveKeyWithValue("n", float64(1)))
			Expect(fields).To(HaveKeyWithValue("created_at", createdAt))
		})
	})

	Context("ToData and Decode", func() {
		It("should move a typed record in and out of the schema-free payload", func() {
			// ARRANGE
			service := entities.NewService("Window cleaning", "cleaning", "Ana", "$40-$80")

			// ACT
			data, err := entities.ToData(service)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(data).NotTo(HaveKey("created_at"))
			Expect(data).To(HaveKeyWithValue("title", "Window cleaning"))

			raw, err := json.Marshal(data)
			Expect(err).NotTo(HaveOccurred())

			decoded, err := entities.Decode[entities.Service](entities.Entity{ID: 12, Data: raw, CreatedAt: createdAt, UpdatedAt: createdAt})
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.ID).To(Equal(int64(12)))
			Expect(decoded.Title).To(Equal("Window cleaning"))
			Expect(decoded.CreatedAt).To(Equal(createdAt))
		})
	})

	It("should strip only the metadata keys", func() {
		stripped := entities.StripMetadata(map[string]any{"id": 1, "created_at": "x", "updated_at": "y", "title": "t"})

		Expect(stripped).To(Equal(map[string]any{"title": "t"}))
	})
})
