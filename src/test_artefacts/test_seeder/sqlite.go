package test_seeder

import (
	"context"
	"fmt"

	"tasksmith/src/infra/sqlite"
	"tasksmith/src/repositories"

	"go.uber.org/zap"
)

// NewSQLiteExecutor abre um banco em memória com o schema aplicado. Cada
// chamada devolve um banco novo e isolado.
func NewSQLiteExecutor(ctx context.Context) repositories.QueryExecutor {
	db, err := sqlite.NewSQLiteClient(ctx, sqlite.MemoryPath)
	if err != nil {
		panic(fmt.Sprintf("failed to open sqlite test database: %v", err))
	}

	return repositories.NewSQLExecutor(db, repositories.SQLiteDialect, zap.NewNop())
}
