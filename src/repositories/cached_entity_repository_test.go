package repositories_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"tasksmith/src/infra/redis"
	"tasksmith/src/repositories"
	"tasksmith/src/test_artefacts/comparer"
	"tasksmith/src/test_artefacts/stubs"
	"tasksmith/src/test_artefacts/test_seeder"
)

var _ = Describe("CachedEntityRepository", func() {
	var (
		ctx         context.Context
		executor    repositories.QueryExecutor
		seeder      test_seeder.TestSeeder
		miniRedis   *miniredis.Miniredis
		redisClient *redis.RedisClient
		repository  *repositories.CachedEntityRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		executor = test_seeder.NewSQLiteExecutor(ctx)
		seeder = test_seeder.New(executor)

		miniRedis = miniredis.RunT(GinkgoT())
		redisClient = redis.NewRedisClient(miniRedis.Addr(), 5, time.Minute)

		store := repositories.NewEntityRepository(executor, zap.NewNop(), repositories.RepositoryOptions{
			EntityType: "Service",
			OrderBy:    "name ASC",
		})
		repository = repositories.NewCachedEntityRepository(store, redisClient, zap.NewNop(), "name ASC")
	})

	AfterEach(func() {
		redisClient.Close()
		executor.Close()
	})

	Context("List", func() {
		It("should serve the second call from the cache", func() {
			// ARRANGE
			_, err := repository.Create(ctx, map[string]any{"name": "a"})
			Expect(err).NotTo(HaveOccurred())

			first, err := repository.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			// escrita por fora do repositório não invalida o cache
			sneaky := stubs.NewEntityStub().WithType("Service").WithData(map[string]any{"name": "b"}).Get()
			seeder.InsertEntity(ctx, &sneaky)

			// ACT
			second, err := repository.List(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeComparableTo(first, comparer.TimeWithinTolerance(1), comparer.JSONRawMessage()))
			Expect(second[0].Type).To(Equal("Service"))
			Expect(miniRedis.Keys()).To(ContainElement("registry:entities:Service"))
		})

		It("should fall back to the database when redis is down", func() {
			// ARRANGE
			_, err := repository.Create(ctx, map[string]any{"name": "a"})
			Expect(err).NotTo(HaveOccurred())
			miniRedis.Close()

			// ACT
			items, err := repository.List(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})
	})

	Context("writes", func() {
		It("should invalidate the cached lists of the type", func() {
			// ARRANGE
			created, err := repository.Create(ctx, map[string]any{"name": "b"})
			Expect(err).NotTo(HaveOccurred())
			_, err = repository.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			// ACT + ASSERT
			_, err = repository.Create(ctx, map[string]any{"name": "a"})
			Expect(err).NotTo(HaveOccurred())
			items, err := repository.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(items)).To(Equal([]string{"a", "b"}))

			_, err = repository.Update(ctx, created.ID, map[string]any{"name": "c"})
			Expect(err).NotTo(HaveOccurred())
			items, err = repository.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(items)).To(Equal([]string{"a", "c"}))

			removed, err := repository.Remove(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())
			items, err = repository.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names(items)).To(Equal([]string{"a"}))
		})
	})

	Context("FindWhere", func() {
		It("should filter the cached list", func() {
			for _, name := range []string{"a", "b"} {
				_, err := repository.Create(ctx, map[string]any{"name": name})
				Expect(err).NotTo(HaveOccurred())
			}

			found, err := repository.FindWhere(ctx, map[string]any{"name": "b"})

			Expect(err).NotTo(HaveOccurred())
			Expect(names(found)).To(Equal([]string{"b"}))
		})
	})
})
