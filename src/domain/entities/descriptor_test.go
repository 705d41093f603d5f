package entities_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"
)

var _ = Describe("Descriptor", func() {
	It("should register every marketplace type", func() {
		for _, entityType := range []string{"Booking", "Review", "Service", "User"} {
			descriptor, found := entities.DescriptorFor(entityType)
			Expect(found).To(BeTrue(), entityType)
			Expect(descriptor.Name).To(Equal(entityType))
		}

		_, found := entities.DescriptorFor("Invoice")
		Expect(found).To(BeFalse())
	})

	Context("ApplyDefaults", func() {
		It("should fill missing fields without touching the input", func() {
			// ARRANGE
			data := map[string]any{"customerName": "Bo"}

			// ACT
			withDefaults := entities.BookingDescriptor.ApplyDefaults(data)

			// ASSERT
			Expect(withDefaults).To(HaveKeyWithValue("status", entities.BookingPending))
			Expect(data).NotTo(HaveKey("status"))
		})

		It("should keep values already provided", func() {
			withDefaults := entities.BookingDescriptor.ApplyDefaults(map[string]any{"status": entities.BookingConfirmed})

			Expect(withDefaults).To(HaveKeyWithValue("status", entities.BookingConfirmed))
		})
	})

	Context("Validate", func() {
		validService := func() map[string]any {
			return map[string]any{
				"title":        "Deep cleaning",
				"category":     "cleaning",
				"providerName": "Ana",
				"priceRange":   "$50-$100",
			}
		}

		It("should accept a complete payload", func() {
			Expect(entities.ServiceDescriptor.Validate(validService(), false)).To(Succeed())
		})

		It("should accept unknown extra fields", func() {
			data := validService()
			data["featured"] = true

			Expect(entities.ServiceDescriptor.Validate(data, false)).To(Succeed())
		})

		It("should report every missing required field", func() {
			// ACT
			err := entities.ServiceDescriptor.Validate(map[string]any{"title": "  "}, false)

			// ASSERT
			var validationErr *domain.ValidationError
			Expect(err).To(BeAssignableToTypeOf(validationErr))
			Expect(err.(*domain.ValidationError).Issues).To(ConsistOf(
				"title is required",
				"category is required",
				"providerName is required",
				"priceRange is required",
			))
		})

		It("should count review text length in characters", func() {
			Expect(entities.ReviewDescriptor.Validate(map[string]any{"reviewText": "Ótimo serviço"}, true)).To(Succeed())
			Expect(entities.ReviewDescriptor.Validate(map[string]any{"reviewText": "很好的服务非常满意谢谢"}, true)).To(Succeed())
		})

		It("should skip required fields on partial updates", func() {
			Expect(entities.ServiceDescriptor.Validate(map[string]any{"category": "tutoring"}, true)).To(Succeed())
		})

		DescribeTable("should reject invalid values",
			func(descriptor *entities.Descriptor, data map[string]any, issue string) {
				err := descriptor.Validate(data, true)

				Expect(err).To(HaveOccurred())
				Expect(err.(*domain.ValidationError).Issues).To(ContainElement(HavePrefix(issue)))
			},
			Entry("wrong type", entities.ServiceDescriptor, map[string]any{"title": 3}, "title must be of type string"),
			Entry("outside enum", entities.ServiceDescriptor, map[string]any{"category": "astrology"}, "category must be one of [home-improvement, cleaning"),
			Entry("bad email", entities.BookingDescriptor, map[string]any{"customerEmail": "not-an-email"}, "customerEmail must be a valid email address"),
			Entry("fractional integer", entities.ReviewDescriptor, map[string]any{"rating": 4.5}, "rating must be of type integer"),
			Entry("rating out of range", entities.ReviewDescriptor, map[string]any{"rating": 6}, "rating must be between 1 and 5"),
			Entry("short review text", entities.ReviewDescriptor, map[string]any{"reviewText": "meh"}, "reviewText must be at least 10 characters long"),
			Entry("short accented review text", entities.ReviewDescriptor, map[string]any{"reviewText": "ééééé"}, "reviewText must be at least 10 characters long"),
			Entry("provider rating out of range", entities.ServiceDescriptor, map[string]any{"providerRating": 7.5}, "providerRating must be between 0 and 5"),
		)
	})
})
