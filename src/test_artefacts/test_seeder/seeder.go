package test_seeder

import (
	"context"
	"fmt"

	"tasksmith/src/domain/entities"
	"tasksmith/src/repositories"
)

// TestSeeder escreve e lê a tabela entities direto pelo executor, sem passar
// pelos repositórios testados.
type TestSeeder struct {
	executor repositories.QueryExecutor
}

func New(executor repositories.QueryExecutor) TestSeeder {
	return TestSeeder{executor: executor}
}

// InsertEntity grava a entidade com os timestamps dela e preenche o ID gerado.
func (ts TestSeeder) InsertEntity(ctx context.Context, entity *entities.Entity) {
	dialect := ts.executor.Dialect()

	query := fmt.Sprintf(
		"INSERT INTO entities (entity_type, data, created_at, updated_at) VALUES (?, %s, ?, ?)%s",
		dialect.JSONParam(), dialect.ReturningID(),
	)

	result, err := ts.executor.Execute(ctx, query,
		entity.Type,
		string(entity.Data),
		entity.CreatedAt,
		entity.UpdatedAt,
	)
	if err != nil || !result.HasLastInsertID {
		panic(fmt.Sprintf("Seeder.InsertEntity failed: %v", err))
	}

	entity.ID = result.LastInsertID
}

func (ts TestSeeder) CountEntities(ctx context.Context, entityType string) int64 {
	rows, err := ts.executor.Query(ctx, "SELECT COUNT(*) AS count FROM entities WHERE entity_type = ?", entityType)
	if err != nil || len(rows) == 0 {
		panic(fmt.Sprintf("Seeder.CountEntities failed: %v", err))
	}

	switch count := rows[0]["count"].(type) {
	case int64:
		return count
	case int32:
		return int64(count)
	}
	panic(fmt.Sprintf("Seeder.CountEntities: unexpected count type %T", rows[0]["count"]))
}

// SelectRawData devolve a coluna data como texto, do jeito que ficou gravada.
func (ts TestSeeder) SelectRawData(ctx context.Context, id int64) string {
	rows, err := ts.executor.Query(ctx, "SELECT data FROM entities WHERE id = ?", id)
	if err != nil || len(rows) == 0 {
		panic(fmt.Sprintf("Seeder.SelectRawData failed: %v", err))
	}

	switch data := rows[0]["data"].(type) {
	case string:
		return data
	case []byte:
		return string(data)
	}
	panic(fmt.Sprintf("Seeder.SelectRawData: unexpected data type %T", rows[0]["data"]))
}

// TruncateEntities limpa a tabela entre os testes que dividem um mesmo banco.
func (ts TestSeeder) TruncateEntities(ctx context.Context) {
	if err := ts.executor.Run(ctx, "DELETE FROM entities"); err != nil {
		panic(fmt.Sprintf("Seeder.TruncateEntities failed: %v", err))
	}
}
