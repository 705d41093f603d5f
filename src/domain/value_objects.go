package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEntityNotFound = errors.New("Entity not found")

	ErrDuplicateReview = errors.New("a review for this booking already exists")

	ErrInvalidEntityType = errors.New("invalid entity type")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ValidationError agrupa todos os problemas encontrados ao validar um payload
// contra o descriptor do tipo de entidade.
type ValidationError struct {
	EntityType string
	Issues     []string
}

func NewValidationError(entityType string, issues ...string) *ValidationError {
	return &ValidationError{EntityType: entityType, Issues: issues}
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("invalid %s payload", e.EntityType)
	}
	return fmt.Sprintf("invalid %s payload: %s", e.EntityType, strings.Join(e.Issues, "; "))
}

// StorageError marks a failure that came from the database driver.
// Unavailable indica que o banco não respondeu (falha de conexão).
type StorageError struct {
	Op          string
	Err         error
	Unavailable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ############################################################
// ################ EVENTOS DE DOMINIO ########################
// ############################################################

const (
	EventEntityCreated = "entity.created"
	EventEntityUpdated = "entity.updated"
	EventEntityDeleted = "entity.deleted"
)

// EntityEvent descreve uma mutação aplicada a uma entidade.
type EntityEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Data       json.RawMessage `json:"data,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
