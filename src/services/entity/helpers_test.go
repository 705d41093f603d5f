package entity_test

import (
	"context"

	"tasksmith/src/repositories"
	"tasksmith/src/test_artefacts/test_seeder"
)

func newExecutor(ctx context.Context) repositories.QueryExecutor {
	return test_seeder.NewSQLiteExecutor(ctx)
}
