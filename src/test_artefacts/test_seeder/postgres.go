package test_seeder

import (
	"context"
	"fmt"

	"tasksmith/src/helper/env"
	"tasksmith/src/infra/postgres"
	"tasksmith/src/repositories"

	"go.uber.org/zap"
)

// NewPostgresExecutor conecta no banco de TEST_DATABASE_URL e aplica o schema.
// Sem a variável devolve false e o teste deve ser pulado.
func NewPostgresExecutor(ctx context.Context) (repositories.QueryExecutor, bool) {
	databaseURL := env.GetString("TEST_DATABASE_URL")
	if databaseURL == "" {
		return nil, false
	}

	pool, err := postgres.NewPostgresClient(databaseURL, false, 4)
	if err != nil {
		panic(fmt.Sprintf("failed to open postgres test database: %v", err))
	}

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		panic(err.Error())
	}

	return repositories.NewPgxExecutor(pool, zap.NewNop()), true
}
