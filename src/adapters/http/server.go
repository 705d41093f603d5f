package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tasksmith/src/domain/entities"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// EntityService é o que os handlers precisam da camada de serviço.
type EntityService interface {
	List(ctx context.Context, entityType string, orderBy string) ([]entities.Entity, error)
	FindWhere(ctx context.Context, entityType string, orderBy string, conditions map[string]any) ([]entities.Entity, error)
	Get(ctx context.Context, entityType string, id int64) (*entities.Entity, error)
	Create(ctx context.Context, entityType string, data map[string]any) (*entities.Entity, error)
	Update(ctx context.Context, entityType string, id int64, patch map[string]any) (*entities.Entity, error)
	UpdateByID(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error)
	Delete(ctx context.Context, entityType string, id int64) error
	DeleteByID(ctx context.Context, id int64) error
	Health(ctx context.Context) error
}

// Server representa o servidor HTTP da API
type Server struct {
	logger        *zap.Logger
	server        *http.Server
	mux           *http.ServeMux
	port          int
	entityService EntityService
}

// NewServer cria uma nova instância do servidor
func NewServer(logger *zap.Logger, port int, entityService EntityService) *Server {
	server := &Server{
		mux:           http.NewServeMux(),
		port:          port,
		logger:        logger,
		entityService: entityService,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server.mux.HandleFunc("GET /api/health", server.Health)

	// Rotas de Leitura
	server.mux.HandleFunc("GET /api/entities/{type}", server.ListEntities)
	server.mux.HandleFunc("GET /api/entities/{type}/{id}", server.GetEntity)

	// Rotas de Escritas
	server.mux.HandleFunc("POST /api/entities", server.CreateUntypedEntity)
	server.mux.HandleFunc("POST /api/entities/{type}", server.CreateEntity)
	server.mux.HandleFunc("PUT /api/entities/{id}", server.UpdateUntypedEntity)
	server.mux.HandleFunc("PUT /api/entities/{type}/{id}", server.UpdateEntity)
	server.mux.HandleFunc("DELETE /api/entities/{id}", server.DeleteUntypedEntity)
	server.mux.HandleFunc("DELETE /api/entities/{type}/{id}", server.DeleteEntity)

	server.mux.Handle("GET /metrics", promhttp.Handler())

	return server
}

// Handler devolve o mux com os middlewares de log e métricas.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", zap.Int("port", s.port))

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.entityService.Health(r.Context()); err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, HealthResponse{Status: "error", Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
