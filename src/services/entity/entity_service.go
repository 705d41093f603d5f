package entity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"
	"tasksmith/src/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var entityTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

var reviewReferenceFields = []string{"bookingId", "serviceId"}

// StoreProvider entrega os stores por tipo de entidade.
type StoreProvider interface {
	For(options repositories.RepositoryOptions) repositories.EntityStore
	LookupEntityType(ctx context.Context, id int64) (string, bool, error)
	Ping(ctx context.Context) error
}

// EventPublisher publica as mutações. Pode ser nil: nesse caso os agregados de
// review são recalculados na própria requisição.
type EventPublisher interface {
	PublishEntityEvents(ctx context.Context, events []domain.EntityEvent) error
}

type EntityService struct {
	stores    StoreProvider
	publisher EventPublisher
	logger    *zap.Logger
}

func NewEntityService(stores StoreProvider, publisher EventPublisher, logger *zap.Logger) *EntityService {
	return &EntityService{
		stores:    stores,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *EntityService) store(entityType string, orderBy string) (repositories.EntityStore, error) {
	if !entityTypePattern.MatchString(entityType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntityType, entityType)
	}

	if orderBy == "" {
		if descriptor, ok := entities.DescriptorFor(entityType); ok {
			orderBy = descriptor.OrderBy
		}
	}

	return s.stores.For(repositories.RepositoryOptions{EntityType: entityType, OrderBy: orderBy}), nil
}

// List devolve todas as entidades do tipo. Sem orderBy vale o do descriptor.
func (s *EntityService) List(ctx context.Context, entityType string, orderBy string) ([]entities.Entity, error) {
	store, err := s.store(entityType, orderBy)
	if err != nil {
		return nil, err
	}

	items, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("EntityService.List - %w", err)
	}

	return items, nil
}

func (s *EntityService) FindWhere(ctx context.Context, entityType string, orderBy string, conditions map[string]any) ([]entities.Entity, error) {
	store, err := s.store(entityType, orderBy)
	if err != nil {
		return nil, err
	}

	items, err := store.FindWhere(ctx, conditions)
	if err != nil {
		return nil, fmt.Errorf("EntityService.FindWhere - %w", err)
	}

	return items, nil
}

func (s *EntityService) Count(ctx context.Context, entityType string) (int64, error) {
	store, err := s.store(entityType, "")
	if err != nil {
		return 0, err
	}
	return store.Count(ctx)
}

func (s *EntityService) Get(ctx context.Context, entityType string, id int64) (*entities.Entity, error) {
	store, err := s.store(entityType, "")
	if err != nil {
		return nil, err
	}

	entity, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("EntityService.Get - %w", err)
	}
	if entity == nil {
		return nil, domain.ErrEntityNotFound
	}

	return entity, nil
}

// Create aplica os defaults do descriptor, valida e grava.
func (s *EntityService) Create(ctx context.Context, entityType string, data map[string]any) (*entities.Entity, error) {
	store, err := s.store(entityType, "")
	if err != nil {
		return nil, err
	}

	data = entities.StripMetadata(data)

	if descriptor, ok := entities.DescriptorFor(entityType); ok {
		data = descriptor.ApplyDefaults(data)
		if err := descriptor.Validate(data, false); err != nil {
			return nil, err
		}
	}

	if entityType == entities.ReviewType {
		if err := s.ensureSingleReview(ctx, store, data["bookingId"]); err != nil {
			return nil, err
		}
	}

	created, err := store.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("EntityService.Create - %w", err)
	}

	s.afterMutation(ctx, domain.EventEntityCreated, *created)

	return created, nil
}

func (s *EntityService) ensureSingleReview(ctx context.Context, reviews repositories.EntityStore, bookingID any) error {
	existing, err := reviews.FindOne(ctx, map[string]any{"bookingId": bookingID})
	if err != nil {
		return fmt.Errorf("EntityService.Create - failed to check existing review: %w", err)
	}
	if existing != nil {
		return domain.ErrDuplicateReview
	}
	return nil
}

// Update valida o patch em modo parcial (sem campos obrigatórios) e aplica o
// merge raso.
func (s *EntityService) Update(ctx context.Context, entityType string, id int64, patch map[string]any) (*entities.Entity, error) {
	store, err := s.store(entityType, "")
	if err != nil {
		return nil, err
	}

	patch = entities.StripMetadata(patch)

	if descriptor, ok := entities.DescriptorFor(entityType); ok {
		if err := descriptor.Validate(patch, true); err != nil {
			return nil, err
		}
	}

	if entityType == entities.ReviewType {
		if err := s.ensureReviewReferences(ctx, store, id, patch); err != nil {
			return nil, err
		}
	}

	updated, err := store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("EntityService.Update - %w", err)
	}

	s.afterMutation(ctx, domain.EventEntityUpdated, *updated)

	return updated, nil
}

// ensureReviewReferences barra a troca de bookingId ou serviceId: os agregados
// do serviço antigo não seriam recalculados. Reenviar o mesmo valor é aceito.
func (s *EntityService) ensureReviewReferences(ctx context.Context, reviews repositories.EntityStore, id int64, patch map[string]any) error {
	changing := map[string]any{}
	for _, key := range reviewReferenceFields {
		if value, ok := patch[key]; ok {
			changing[key] = value
		}
	}
	if len(changing) == 0 {
		return nil
	}

	existing, err := reviews.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("EntityService.Update - %w", err)
	}
	if existing == nil {
		return domain.ErrEntityNotFound
	}

	var issues []string
	for _, key := range reviewReferenceFields {
		value, ok := changing[key]
		if !ok {
			continue
		}
		if len(repositories.FilterEntities([]entities.Entity{*existing}, map[string]any{key: value})) == 0 {
			issues = append(issues, key+" cannot be changed")
		}
	}
	if len(issues) > 0 {
		return domain.NewValidationError(entities.ReviewType, issues...)
	}

	return nil
}

// UpdateByID atende a rota sem tipo: o tipo vem da própria linha.
func (s *EntityService) UpdateByID(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error) {
	entityType, err := s.lookupType(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, entityType, id, patch)
}

// Delete responde ErrEntityNotFound quando nada foi removido; o repositório
// em si continua idempotente.
func (s *EntityService) Delete(ctx context.Context, entityType string, id int64) error {
	store, err := s.store(entityType, "")
	if err != nil {
		return err
	}

	existing, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("EntityService.Delete - %w", err)
	}
	if existing == nil {
		return domain.ErrEntityNotFound
	}

	removed, err := store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("EntityService.Delete - %w", err)
	}
	if !removed {
		return domain.ErrEntityNotFound
	}

	s.afterMutation(ctx, domain.EventEntityDeleted, *existing)

	return nil
}

func (s *EntityService) DeleteByID(ctx context.Context, id int64) error {
	entityType, err := s.lookupType(ctx, id)
	if err != nil {
		return err
	}
	return s.Delete(ctx, entityType, id)
}

func (s *EntityService) Health(ctx context.Context) error {
	return s.stores.Ping(ctx)
}

func (s *EntityService) lookupType(ctx context.Context, id int64) (string, error) {
	entityType, found, err := s.stores.LookupEntityType(ctx, id)
	if err != nil {
		return "", fmt.Errorf("EntityService.lookupType - %w", err)
	}
	if !found {
		return "", domain.ErrEntityNotFound
	}
	return entityType, nil
}

func (s *EntityService) afterMutation(ctx context.Context, eventType string, entity entities.Entity) {
	event := domain.EntityEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		Data:       entity.Data,
		OccurredAt: time.Now().UTC(),
	}

	if s.publisher == nil {
		if err := s.HandleEvent(ctx, event); err != nil {
			s.logger.Error("Failed to apply entity event inline",
				zap.String("event_type", eventType),
				zap.Int64("entity_id", entity.ID),
				zap.Error(err))
		}
		return
	}

	// falha de publicação não desfaz a mutação
	if err := s.publisher.PublishEntityEvents(ctx, []domain.EntityEvent{event}); err != nil {
		s.logger.Error("Failed to publish entity event",
			zap.String("event_type", eventType),
			zap.String("entity_type", entity.Type),
			zap.Int64("entity_id", entity.ID),
			zap.Error(err))
	}
}
