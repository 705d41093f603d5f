package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	httpadapter "tasksmith/src/adapters/http"
	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"
	"tasksmith/src/infra/metrics"
)

// unavailableService falha como um banco fora do ar.
type unavailableService struct {
	httpadapter.EntityService
	err error
}

func (s unavailableService) Get(context.Context, string, int64) (*entities.Entity, error) {
	return nil, s.err
}

func (s unavailableService) Health(context.Context) error {
	return s.err
}

var _ = Describe("Server with storage down", func() {
	var server *httptest.Server

	BeforeEach(func() {
		metrics.Register()

		storageErr := &domain.StorageError{Op: "query", Err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), Unavailable: true}
		service := unavailableService{err: storageErr}
		server = httptest.NewServer(httpadapter.NewServer(zap.NewNop(), 0, service).Handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should hide connection details behind the generic message", func() {
		// ACT
		resp, err := http.Get(server.URL + "/api/entities/Service/1")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		// ASSERT
		Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"error":"` + domain.ErrUnavailableServer.Error() + `"}`))
	})

	It("should report the health check as failed", func() {
		resp, err := http.Get(server.URL + "/api/health")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
	})
})
