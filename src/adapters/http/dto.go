package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tasksmith/src/domain"

	"go.uber.org/zap"
)

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type DeleteResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// CreateEntityRequest é o corpo de POST /api/entities.
type CreateEntityRequest struct {
	EntityType string         `json:"entity_type"`
	Data       map[string]any `json:"data"`
}

// UpdateEntityRequest é o corpo de PUT /api/entities/{id}. Só data é lido;
// entity_type e qualquer outra chave são ignorados.
type UpdateEntityRequest struct {
	Data map[string]any `json:"data"`
}

// decodeData atende as rotas tipadas e aceita tanto {"data": {...}} quanto o
// objeto "cru". Um objeto cuja única chave é "data" (com um objeto dentro) é
// sempre tratado como envelope: para gravar um campo chamado data, mande
// {"data": {"data": {...}}}.
func decodeData(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("Invalid JSON payload")
	}
	if body == nil {
		return nil, errors.New("Request body must be a JSON object")
	}

	if len(body) == 1 {
		if data, ok := body["data"].(map[string]any); ok {
			return data, nil
		}
	}

	return body, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("Invalid Entity ID format")
	}
	return id, nil
}

// parseFilterValue interpreta o valor de um filtro da query string: números,
// booleanos e null viram os tipos JSON equivalentes; o resto fica string.
func parseFilterValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		switch value.(type) {
		case float64, bool, nil:
			return value
		}
	}
	return raw
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

// writeError traduz os erros de domínio em status HTTP.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	var storageErr *domain.StorageError

	switch {
	case errors.As(err, &validationErr):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: validationErr.Issues})
	case errors.Is(err, domain.ErrInvalidEntityType):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEntityNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: domain.ErrEntityNotFound.Error()})
	case errors.Is(err, domain.ErrDuplicateReview):
		s.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &storageErr) && storageErr.Unavailable:
		s.logger.Error("Database unavailable",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: domain.ErrUnavailableServer.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}
