package entities

import (
	"encoding/json"
	"fmt"
)

// ToData converte um registro tipado no payload schema-free gravado na tabela.
func ToData(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("record %T is not a JSON object: %w", record, err)
	}

	return StripMetadata(data), nil
}

// Decode reconstrói o registro tipado a partir da visão lógica da entidade.
func Decode[T any](entity Entity) (T, error) {
	var record T

	raw, err := json.Marshal(entity)
	if err != nil {
		return record, err
	}

	if err := json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("failed to decode entity %d into %T: %w", entity.ID, record, err)
	}

	return record, nil
}
