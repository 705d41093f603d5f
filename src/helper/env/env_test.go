package env_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tasksmith/src/helper/env"
)

var _ = Describe("Env", func() {
	Context("LoadDotEnv", func() {
		It("should load values without overriding the environment", func() {
			// ARRANGE
			file := filepath.Join(GinkgoT().TempDir(), ".env")
			Expect(os.WriteFile(file, []byte("TASKSMITH_TEST_A=from-file\nTASKSMITH_TEST_B=from-file\n"), 0o600)).To(Succeed())
			GinkgoT().Setenv("TASKSMITH_TEST_B", "from-env")
			GinkgoT().Setenv("TASKSMITH_TEST_A", "")
			Expect(os.Unsetenv("TASKSMITH_TEST_A")).To(Succeed())

			// ACT
			err := env.LoadDotEnv(file)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Getenv("TASKSMITH_TEST_A")).To(Equal("from-file"))
			Expect(os.Getenv("TASKSMITH_TEST_B")).To(Equal("from-env"))
		})

		It("should ignore missing files", func() {
			err := env.LoadDotEnv(filepath.Join(GinkgoT().TempDir(), "missing.env"))

			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("getters", func() {
		BeforeEach(func() {
			GinkgoT().Setenv("TASKSMITH_TEST_INT", "42")
			GinkgoT().Setenv("TASKSMITH_TEST_BOOL", "true")
			GinkgoT().Setenv("TASKSMITH_TEST_BAD", "not-a-number")
		})

		It("should read typed values", func() {
			Expect(env.GetInt("TASKSMITH_TEST_INT", 1)).To(Equal(42))
			Expect(env.GetBool("TASKSMITH_TEST_BOOL", false)).To(BeTrue())
			Expect(env.GetSeconds("TASKSMITH_TEST_INT")).To(Equal(42 * time.Second))
		})

		It("should fall back to the defaults", func() {
			Expect(env.GetInt("TASKSMITH_TEST_BAD", 7)).To(Equal(7))
			Expect(env.GetString("TASKSMITH_TEST_UNSET", "fallback")).To(Equal("fallback"))
			Expect(env.GetSeconds("TASKSMITH_TEST_UNSET", 3)).To(Equal(3 * time.Second))
		})

		It("should panic when a required value is missing", func() {
			Expect(func() { env.MustGetString("TASKSMITH_TEST_UNSET") }).To(Panic())
		})
	})
})
