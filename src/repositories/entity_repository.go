package repositories

import (
	"context"
	"fmt"
	"time"

	"tasksmith/src/domain"
	"tasksmith/src/domain/entities"

	"go.uber.org/zap"
)

// EntityStore é o contrato de CRUD por tipo de entidade. Implementado pelo
// EntityRepository e pelo CachedEntityRepository.
type EntityStore interface {
	EntityType() string
	List(ctx context.Context) ([]entities.Entity, error)
	Get(ctx context.Context, id int64) (*entities.Entity, error)
	Create(ctx context.Context, data map[string]any) (*entities.Entity, error)
	Update(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	FindWhere(ctx context.Context, conditions map[string]any) ([]entities.Entity, error)
	FindOne(ctx context.Context, conditions map[string]any) (*entities.Entity, error)
}

type RepositoryOptions struct {
	EntityType string
	// OrderBy pode citar campos de dentro do blob, por isso a ordenação é
	// feita em memória e não no ORDER BY.
	OrderBy string
}

type EntityRepository struct {
	executor   QueryExecutor
	logger     *zap.Logger
	entityType string
	orderBy    []OrderClause
	now        func() time.Time
}

func NewEntityRepository(executor QueryExecutor, logger *zap.Logger, options RepositoryOptions) *EntityRepository {
	return &EntityRepository{
		executor:   executor,
		logger:     logger.With(zap.String("entity_type", options.EntityType)),
		entityType: options.EntityType,
		orderBy:    ParseOrderBy(options.OrderBy),
		now:        defaultClock,
	}
}

func defaultClock() time.Time {
	// o postgres guarda microssegundos
	return time.Now().UTC().Truncate(time.Microsecond)
}

// WithClock troca o relógio usado nos timestamps.
func (r *EntityRepository) WithClock(now func() time.Time) *EntityRepository {
	r.now = now
	return r
}

func (r *EntityRepository) EntityType() string {
	return r.entityType
}

func (r *EntityRepository) List(ctx context.Context) ([]entities.Entity, error) {
	rows, err := r.executor.Query(ctx,
		"SELECT "+selectColumns+" FROM entities WHERE entity_type = ? ORDER BY id",
		r.entityType,
	)
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.List - failed to list %s: %w", r.entityType, err)
	}

	items, err := rowsToEntities(rows)
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.List - failed to map %s rows: %w", r.entityType, err)
	}

	if len(r.orderBy) > 0 {
		items = SortEntities(items, r.orderBy)
	}

	return items, nil
}

// Get devolve (nil, nil) quando a entidade não existe.
func (r *EntityRepository) Get(ctx context.Context, id int64) (*entities.Entity, error) {
	rows, err := r.executor.Query(ctx,
		"SELECT "+selectColumns+" FROM entities WHERE entity_type = ? AND id = ?",
		r.entityType, id,
	)
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.Get - failed to get %s %d: %w", r.entityType, id, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	entity, err := rowToEntity(rows[0])
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.Get - failed to map %s %d: %w", r.entityType, id, err)
	}

	return &entity, nil
}

// Create grava o payload e relê a linha pelo novo id, devolvendo exatamente o
// que ficou no banco.
func (r *EntityRepository) Create(ctx context.Context, data map[string]any) (*entities.Entity, error) {
	payload, err := encodeData(entities.StripMetadata(data))
	if err != nil {
		return nil, err
	}

	dialect := r.executor.Dialect()
	now := r.now()

	query := fmt.Sprintf(
		"INSERT INTO entities (entity_type, data, created_at, updated_at) VALUES (?, %s, ?, ?)%s",
		dialect.JSONParam(), dialect.ReturningID(),
	)

	result, err := r.executor.Execute(ctx, query, r.entityType, payload, now, now)
	if err != nil {
		return nil, fmt.Errorf("EntityRepository.Create - failed to insert %s: %w", r.entityType, err)
	}

	if !result.HasLastInsertID {
		return nil, fmt.Errorf("EntityRepository.Create - insert of %s returned no id", r.entityType)
	}

	created, err := r.Get(ctx, result.LastInsertID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("EntityRepository.Create - %s %d vanished after insert", r.entityType, result.LastInsertID)
	}

	r.logger.Debug("Entity created", zap.Int64("id", created.ID))

	return created, nil
}

// Update aplica o merge raso do patch sobre o payload atual e renova
// updated_at. No postgres o merge acontece num único UPDATE (jsonb ||); nos
// demais bancos é ler-mesclar-gravar, e duas atualizações simultâneas da mesma
// entidade podem se sobrescrever (a última gravação vence).
func (r *EntityRepository) Update(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error) {
	patch = entities.StripMetadata(patch)

	var err error
	if r.executor.Dialect().SupportsAtomicMerge() {
		err = r.mergeInPlace(ctx, id, patch)
	} else {
		err = r.readMergeWrite(ctx, id, patch)
	}
	if err != nil {
		return nil, err
	}

	updated, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// removida entre o UPDATE e a releitura
		return nil, domain.ErrEntityNotFound
	}

	return updated, nil
}

func (r *EntityRepository) mergeInPlace(ctx context.Context, id int64, patch map[string]any) error {
	payload, err := encodeData(patch)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE entities SET data = data || %s, updated_at = ? WHERE entity_type = ? AND id = ?",
		r.executor.Dialect().JSONParam(),
	)

	result, err := r.executor.Execute(ctx, query, payload, r.now(), r.entityType, id)
	if err != nil {
		return fmt.Errorf("EntityRepository.Update - failed to update %s %d: %w", r.entityType, id, err)
	}

	if result.RowsAffected == 0 {
		return domain.ErrEntityNotFound
	}

	return nil
}

func (r *EntityRepository) readMergeWrite(ctx context.Context, id int64, patch map[string]any) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrEntityNotFound
	}

	current, err := existing.DataMap()
	if err != nil {
		return fmt.Errorf("EntityRepository.Update - %w", err)
	}

	payload, err := encodeData(MergeData(entities.StripMetadata(current), patch))
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE entities SET data = %s, updated_at = ? WHERE entity_type = ? AND id = ?",
		r.executor.Dialect().JSONParam(),
	)

	if err := r.executor.Run(ctx, query, payload, r.now(), r.entityType, id); err != nil {
		return fmt.Errorf("EntityRepository.Update - failed to update %s %d: %w", r.entityType, id, err)
	}

	return nil
}

// Remove é idempotente: apagar uma entidade inexistente não é erro. O bool
// indica se alguma linha foi removida.
func (r *EntityRepository) Remove(ctx context.Context, id int64) (bool, error) {
	result, err := r.executor.Execute(ctx,
		"DELETE FROM entities WHERE entity_type = ? AND id = ?",
		r.entityType, id,
	)
	if err != nil {
		return false, fmt.Errorf("EntityRepository.Remove - failed to delete %s %d: %w", r.entityType, id, err)
	}

	return result.RowsAffected > 0, nil
}

func (r *EntityRepository) Count(ctx context.Context) (int64, error) {
	rows, err := r.executor.Query(ctx,
		"SELECT COUNT(*) AS count FROM entities WHERE entity_type = ?",
		r.entityType,
	)
	if err != nil {
		return 0, fmt.Errorf("EntityRepository.Count - failed to count %s: %w", r.entityType, err)
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return toInt64(rows[0]["count"])
}

// FindWhere carrega todas as entidades do tipo e filtra em memória; não usa
// índice nenhum.
func (r *EntityRepository) FindWhere(ctx context.Context, conditions map[string]any) ([]entities.Entity, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	return FilterEntities(all, conditions), nil
}

func (r *EntityRepository) FindOne(ctx context.Context, conditions map[string]any) (*entities.Entity, error) {
	found, err := r.FindWhere(ctx, conditions)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, nil
	}

	return &found[0], nil
}

// LookupEntityType descobre o tipo de um id, para as rotas que não recebem o tipo.
func LookupEntityType(ctx context.Context, executor QueryExecutor, id int64) (string, bool, error) {
	rows, err := executor.Query(ctx, "SELECT entity_type FROM entities WHERE id = ?", id)
	if err != nil {
		return "", false, fmt.Errorf("failed to lookup entity %d: %w", id, err)
	}

	if len(rows) == 0 {
		return "", false, nil
	}

	entityType, ok := rows[0]["entity_type"].(string)
	if !ok {
		return "", false, fmt.Errorf("entity %d has an invalid entity_type column", id)
	}

	return entityType, true, nil
}
