package repositories

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasksmith/src/domain/entities"
)

const selectColumns = "id, entity_type, data, created_at, updated_at"

// formatos que os drivers devolvem para colunas de timestamp em texto
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func rowToEntity(row Row) (entities.Entity, error) {
	id, err := toInt64(row["id"])
	if err != nil {
		return entities.Entity{}, fmt.Errorf("invalid id column: %w", err)
	}

	data, err := toRawJSON(row["data"])
	if err != nil {
		return entities.Entity{}, fmt.Errorf("invalid data column of entity %d: %w", id, err)
	}

	createdAt, err := toTime(row["created_at"])
	if err != nil {
		return entities.Entity{}, fmt.Errorf("invalid created_at column of entity %d: %w", id, err)
	}

	updatedAt, err := toTime(row["updated_at"])
	if err != nil {
		return entities.Entity{}, fmt.Errorf("invalid updated_at column of entity %d: %w", id, err)
	}

	entityType, _ := row["entity_type"].(string)

	return entities.Entity{
		ID:        id,
		Type:      entityType,
		Data:      data,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func rowsToEntities(rows []Row) ([]entities.Entity, error) {
	result := make([]entities.Entity, 0, len(rows))
	for _, row := range rows {
		entity, err := rowToEntity(row)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, fmt.Errorf("unexpected NULL")
	}
	return 0, fmt.Errorf("unsupported integer type %T", value)
}

// toRawJSON aceita o blob como texto (sqlite) ou já decodificado (pgx jsonb).
func toRawJSON(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case string:
		return json.RawMessage(v), nil
	case []byte:
		return json.RawMessage(append([]byte(nil), v...)), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", value)
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode entity data: %w", err)
	}
	return string(raw), nil
}

// MergeData faz o merge raso: as chaves do patch vencem, as demais ficam.
// Objetos aninhados são substituídos inteiros.
func MergeData(current map[string]any, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(patch))
	for key, value := range current {
		merged[key] = value
	}
	for key, value := range patch {
		merged[key] = value
	}
	return merged
}
