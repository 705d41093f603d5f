package repositories_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tasksmith/src/repositories"
)

var _ = Describe("Dialect", func() {
	Context("Rebind", func() {
		It("should number placeholders for postgres", func() {
			query := repositories.PostgresDialect.Rebind("UPDATE entities SET data = ? WHERE entity_type = ? AND id = ?")

			Expect(query).To(Equal("UPDATE entities SET data = $1 WHERE entity_type = $2 AND id = $3"))
		})

		It("should leave question marks inside literals untouched", func() {
			query := repositories.PostgresDialect.Rebind("SELECT '?' AS mark, id FROM entities WHERE id = ?")

			Expect(query).To(Equal("SELECT '?' AS mark, id FROM entities WHERE id = $1"))
		})

		It("should keep sqlite queries as they are", func() {
			query := "SELECT id FROM entities WHERE id = ?"

			Expect(repositories.SQLiteDialect.Rebind(query)).To(Equal(query))
		})
	})

	It("should only merge atomically on postgres", func() {
		Expect(repositories.PostgresDialect.SupportsAtomicMerge()).To(BeTrue())
		Expect(repositories.SQLiteDialect.SupportsAtomicMerge()).To(BeFalse())
		Expect(repositories.PostgresDialect.JSONParam()).To(Equal("CAST(? AS jsonb)"))
		Expect(repositories.SQLiteDialect.ReturningID()).To(BeEmpty())
	})

	Context("MergeData", func() {
		It("should let the patch win and keep the other keys", func() {
			merged := repositories.MergeData(map[string]any{"a": 1, "b": 2}, map[string]any{"b": 3})

			Expect(merged).To(Equal(map[string]any{"a": 1, "b": 3}))
		})
	})
})
