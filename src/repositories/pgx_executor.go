package repositories

import (
	"context"

	"tasksmith/src/domain"
	"tasksmith/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PgxExecutor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPgxExecutor(pool *pgxpool.Pool, logger *zap.Logger) *PgxExecutor {
	return &PgxExecutor{pool: pool, logger: logger}
}

func (e *PgxExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.pool.Query(ctx, PostgresDialect.Rebind(query), args...)
	if err != nil {
		return nil, e.fail("query", query, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []Row

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, e.fail("query", query, err)
		}

		row := make(Row, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, e.fail("query", query, err)
	}

	return result, nil
}

func (e *PgxExecutor) Run(ctx context.Context, query string, args ...any) error {
	if _, err := e.pool.Exec(ctx, PostgresDialect.Rebind(query), args...); err != nil {
		return e.fail("run", query, err)
	}
	return nil
}

// Execute lê o id da primeira linha quando a query tem RETURNING id.
func (e *PgxExecutor) Execute(ctx context.Context, query string, args ...any) (ExecResult, error) {
	rows, err := e.pool.Query(ctx, PostgresDialect.Rebind(query), args...)
	if err != nil {
		return ExecResult{}, e.fail("execute", query, err)
	}
	defer rows.Close()

	var result ExecResult
	fields := rows.FieldDescriptions()

	for rows.Next() {
		if result.HasLastInsertID {
			continue
		}

		values, err := rows.Values()
		if err != nil {
			return ExecResult{}, e.fail("execute", query, err)
		}

		for i, field := range fields {
			if field.Name != "id" {
				continue
			}
			if id, err := toInt64(values[i]); err == nil {
				result.LastInsertID = id
				result.HasLastInsertID = true
			}
		}
	}

	if err := rows.Err(); err != nil {
		return ExecResult{}, e.fail("execute", query, err)
	}

	result.RowsAffected = rows.CommandTag().RowsAffected()
	return result, nil
}

func (e *PgxExecutor) Ping(ctx context.Context) error {
	if err := e.pool.Ping(ctx); err != nil {
		return e.fail("ping", "", err)
	}
	return nil
}

func (e *PgxExecutor) Dialect() Dialect {
	return PostgresDialect
}

func (e *PgxExecutor) Close() {
	e.pool.Close()
}

func (e *PgxExecutor) fail(op string, query string, err error) error {
	e.logger.Error("Database operation failed",
		zap.String("op", op),
		zap.String("dialect", PostgresDialect.Name),
		zap.String("query", query),
		zap.Error(err))
	return &domain.StorageError{Op: op, Err: err, Unavailable: postgres.IsConnectionError(err)}
}
