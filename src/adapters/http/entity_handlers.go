package http

import (
	"encoding/json"
	"net/http"

	"tasksmith/src/domain/entities"
)

const orderByParam = "orderBy"

// ListEntities lista um tipo. Parâmetros além de orderBy viram filtros de
// igualdade (?status=pending).
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("type")
	query := r.URL.Query()
	orderBy := query.Get(orderByParam)

	conditions := make(map[string]any)
	for key, values := range query {
		if key == orderByParam || len(values) == 0 {
			continue
		}
		conditions[key] = parseFilterValue(values[0])
	}

	var items []entities.Entity
	var err error
	if len(conditions) == 0 {
		items, err = s.entityService.List(r.Context(), entityType, orderBy)
	} else {
		items, err = s.entityService.FindWhere(r.Context(), entityType, orderBy, conditions)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if items == nil {
		items = []entities.Entity{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	entity, err := s.entityService.Get(r.Context(), r.PathValue("type"), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entity)
}

func (s *Server) CreateEntity(w http.ResponseWriter, r *http.Request) {
	data, err := decodeData(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	created, err := s.entityService.Create(r.Context(), r.PathValue("type"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) CreateUntypedEntity(w http.ResponseWriter, r *http.Request) {
	var request CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.badRequest(w, "Invalid JSON payload")
		return
	}

	if request.EntityType == "" || request.Data == nil {
		s.badRequest(w, "entity_type and data are required")
		return
	}

	created, err := s.entityService.Create(r.Context(), request.EntityType, request.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	patch, err := decodeData(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	updated, err := s.entityService.Update(r.Context(), r.PathValue("type"), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) UpdateUntypedEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	var request UpdateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.badRequest(w, "Invalid JSON payload")
		return
	}

	if request.Data == nil {
		s.badRequest(w, "data is required")
		return
	}

	updated, err := s.entityService.UpdateByID(r.Context(), id, request.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	if err := s.entityService.Delete(r.Context(), r.PathValue("type"), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, DeleteResponse{Success: true, ID: id})
}

func (s *Server) DeleteUntypedEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	if err := s.entityService.DeleteByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, DeleteResponse{Success: true, ID: id})
}
