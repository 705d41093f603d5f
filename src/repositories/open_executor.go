package repositories

import (
	"context"
	"fmt"

	"tasksmith/src/infra/postgres"
	"tasksmith/src/infra/sqlite"

	"go.uber.org/zap"
)

// OpenExecutor escolhe o banco pela DATABASE_URL (postgres://... ou sqlite:...)
// e garante que a tabela exista antes de devolver o executor.
func OpenExecutor(ctx context.Context, logger *zap.Logger, databaseURL string, ssl bool, maxConnections int) (QueryExecutor, error) {
	if sqlite.IsSQLiteURL(databaseURL) {
		path := sqlite.PathFromURL(databaseURL)

		db, err := sqlite.NewSQLiteClient(ctx, path)
		if err != nil {
			return nil, err
		}

		logger.Info("Using embedded sqlite database", zap.String("path", path))
		return NewSQLExecutor(db, SQLiteDialect, logger), nil
	}

	pool, err := postgres.NewPostgresClient(databaseURL, ssl, maxConnections)
	if err != nil {
		return nil, err
	}

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure postgres schema: %w", err)
	}

	logger.Info("Using postgres database", zap.Int("max_connections", maxConnections), zap.Bool("ssl", ssl))
	return NewPgxExecutor(pool, logger), nil
}
