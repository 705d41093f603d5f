package debezium

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasksmith/src/domain"
)

// CDCSerializer handles parsing and validation of CDC messages
type CDCSerializer struct {
	IncludeTables []string
}

// IsTableMonitored aceita nome exato ou prefixo terminado em "*"
// (entities* cobre entities_p2025, por exemplo).
func (s *CDCSerializer) IsTableMonitored(tableName string) bool {
	for _, included := range s.IncludeTables {
		if tableName == included {
			return true
		}
		if strings.HasSuffix(included, "*") && strings.HasPrefix(tableName, strings.TrimSuffix(included, "*")) {
			return true
		}
	}
	return false
}

// ParseCDCEvent deserializes Kafka message to CDC event. Aceita tanto o
// envelope puro quanto o formato {schema, payload} do JsonConverter com
// schemas.enable=true.
func (s *CDCSerializer) ParseCDCEvent(messageValue []byte) (*CDCEvent, error) {
	var wrapped struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(messageValue, &wrapped); err == nil && len(wrapped.Payload) > 0 {
		messageValue = wrapped.Payload
	}

	var cdcEvent CDCEvent
	if err := json.Unmarshal(messageValue, &cdcEvent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CDC event: %w", err)
	}

	if err := s.validateCDCEvent(&cdcEvent); err != nil {
		return nil, fmt.Errorf("invalid CDC event: %w", err)
	}

	return &cdcEvent, nil
}

func (s *CDCSerializer) validateCDCEvent(event *CDCEvent) error {
	if event.Source.Table == "" {
		return errors.New("missing source table")
	}

	switch event.Operation {
	case OperationCreate, OperationUpdate, OperationRead:
		if event.After == nil {
			return fmt.Errorf("missing 'after' data for operation %s", event.Operation)
		}
	case OperationDelete:
		if event.Before == nil {
			return errors.New("missing 'before' data for delete operation")
		}
	case "":
		return errors.New("missing operation")
	default:
		return fmt.Errorf("invalid operation: %s", event.Operation)
	}

	return nil
}

func (s *CDCSerializer) ShouldProcessEvent(event *CDCEvent) bool {
	return s.IsTableMonitored(event.Source.Table)
}

// MapCDCOperation converte o código do debezium no tipo de evento de entidade.
// Leituras de snapshot contam como criação.
func MapCDCOperation(cdcOp string) string {
	switch cdcOp {
	case OperationCreate, OperationRead:
		return domain.EventEntityCreated
	case OperationUpdate:
		return domain.EventEntityUpdated
	case OperationDelete:
		return domain.EventEntityDeleted
	default:
		return ""
	}
}

// ToEntityEvent traduz uma linha da tabela entities num EntityEvent. Sem
// REPLICA IDENTITY FULL o before de um delete só traz o id, e o evento sai
// sem entity_type nem data.
func ToEntityEvent(event *CDCEvent) (domain.EntityEvent, error) {
	row := event.Row()

	id, err := rowID(row["id"])
	if err != nil {
		return domain.EntityEvent{}, err
	}

	entityType, _ := row["entity_type"].(string)

	data, err := rowData(row["data"])
	if err != nil {
		return domain.EntityEvent{}, fmt.Errorf("entity %d: %w", id, err)
	}

	return domain.EntityEvent{
		EventID:    fmt.Sprintf("cdc-%d-%d-%s", event.Source.LSN, id, event.Operation),
		EventType:  MapCDCOperation(event.Operation),
		EntityType: entityType,
		EntityID:   id,
		Data:       data,
		OccurredAt: time.UnixMilli(event.TsMs).UTC(),
	}, nil
}

func rowID(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case nil:
		return 0, errors.New("row without id")
	default:
		return 0, fmt.Errorf("unexpected id type %T", value)
	}
}

// O debezium entrega colunas jsonb como string (io.debezium.data.Json).
func rowData(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if !json.Valid([]byte(v)) {
			return nil, errors.New("data column is not valid JSON")
		}
		return json.RawMessage(v), nil
	case map[string]any:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("unexpected data column type %T", value)
	}
}
