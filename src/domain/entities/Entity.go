package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// metadataFields nunca são persistidos dentro do blob data.
var metadataFields = []string{FieldID, FieldCreatedAt, FieldUpdatedAt}

// Entity é uma linha da tabela entities.
type Entity struct {
	ID   int64  `json:"id"`
	Type string `json:"entity_type"`
	// Usamos json.RawMessage para os dados, pois cada tipo de entidade
	// tem seu próprio formato e a tabela não conhece nenhum deles.
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON "achata" o campo Data: os campos do payload ficam lado a lado
// com id, created_at e updated_at. Os metadados sempre vencem.
func (e Entity) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage)

	if len(e.Data) > 0 && !bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		if err := json.Unmarshal(e.Data, &fields); err != nil {
			return nil, fmt.Errorf("entity %d has a non-object data payload: %w", e.ID, err)
		}
	}

	id, _ := json.Marshal(e.ID)
	createdAt, err := json.Marshal(e.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := json.Marshal(e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	fields[FieldID] = id
	fields[FieldCreatedAt] = createdAt
	fields[FieldUpdatedAt] = updatedAt

	return json.Marshal(fields)
}

// UnmarshalJSON reverte o formato achatado. O tipo não faz parte da visão
// lógica, então fica vazio.
func (e *Entity) UnmarshalJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	if v, ok := fields[FieldID]; ok {
		if err := json.Unmarshal(v, &e.ID); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
	}
	if v, ok := fields[FieldCreatedAt]; ok {
		if err := json.Unmarshal(v, &e.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at: %w", err)
		}
	}
	if v, ok := fields[FieldUpdatedAt]; ok {
		if err := json.Unmarshal(v, &e.UpdatedAt); err != nil {
			return fmt.Errorf("invalid updated_at: %w", err)
		}
	}

	for _, key := range metadataFields {
		delete(fields, key)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	e.Data = data

	return nil
}

// DataMap decodifica o payload. Um payload vazio vira um mapa vazio.
func (e Entity) DataMap() (map[string]any, error) {
	out := make(map[string]any)
	if len(e.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data of entity %d: %w", e.ID, err)
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// Fields devolve a visão lógica usada para ordenação e filtros em memória.
// Números chegam como float64 e os timestamps como time.Time.
func (e Entity) Fields() map[string]any {
	fields, err := e.DataMap()
	if err != nil {
		fields = make(map[string]any)
	}

	fields[FieldID] = float64(e.ID)
	fields[FieldCreatedAt] = e.CreatedAt
	fields[FieldUpdatedAt] = e.UpdatedAt

	return fields
}

// StripMetadata remove as chaves reservadas de um payload.
func StripMetadata(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		if IsMetadataField(key) {
			continue
		}
		out[key] = value
	}
	return out
}

func IsMetadataField(key string) bool {
	for _, field := range metadataFields {
		if key == field {
			return true
		}
	}
	return false
}
