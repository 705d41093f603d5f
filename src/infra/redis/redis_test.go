package redis_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tasksmith/src/infra/redis"
)

var _ = Describe("RedisClient", func() {
	var (
		ctx    context.Context
		server *miniredis.Miniredis
		client *redis.RedisClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = miniredis.RunT(GinkgoT())
		client = redis.NewRedisClient(server.Addr(), 5, time.Minute).WithPrefix("test:")
		DeferCleanup(client.Close)
	})

	It("should report a miss for unknown keys", func() {
		value, found, err := client.GetKey(ctx, "nope")

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
		Expect(value).To(BeEmpty())
	})

	It("should store the value and register the key", func() {
		// ACT
		err := client.SetWithRegistry(ctx, "list:Service", `[{"id":1}]`, []string{"registry:Service"})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())

		value, found, err := client.GetKey(ctx, "list:Service")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(value).To(Equal(`[{"id":1}]`))

		members, err := client.GetSetMembers(ctx, "registry:Service")
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(ConsistOf("list:Service"))

		Expect(server.Exists("test:list:Service")).To(BeTrue())
		Expect(server.TTL("test:list:Service")).To(Equal(time.Minute))
	})

	It("should expire entries after the ttl", func() {
		Expect(client.SetWithRegistry(ctx, "list:User", "[]", nil)).To(Succeed())

		server.FastForward(2 * time.Minute)

		_, found, err := client.GetKey(ctx, "list:User")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should invalidate keys", func() {
		// ARRANGE
		Expect(client.SetWithRegistry(ctx, "a", "1", []string{"registry"})).To(Succeed())
		Expect(client.SetWithRegistry(ctx, "b", "2", []string{"registry"})).To(Succeed())

		// ACT
		err := client.InvalidateKeys(ctx, []string{"a", "registry"})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(server.Exists("test:a")).To(BeFalse())
		Expect(server.Exists("test:registry")).To(BeFalse())
		Expect(server.Exists("test:b")).To(BeTrue())
	})

	It("should be healthy while the server is up", func() {
		Expect(client.HealthCheck(ctx)).To(Succeed())

		server.Close()

		Expect(client.HealthCheck(ctx)).NotTo(Succeed())
	})
})
