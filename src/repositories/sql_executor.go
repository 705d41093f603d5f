package repositories

import (
	"context"
	"database/sql"
	"strings"

	"tasksmith/src/domain"

	"go.uber.org/zap"
)

// SQLExecutor roda sobre database/sql; é o executor do modo embutido (sqlite).
type SQLExecutor struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

func NewSQLExecutor(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect, logger: logger}
}

func (e *SQLExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, e.dialect.Rebind(query), args...)
	if err != nil {
		return nil, e.fail("query", query, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, e.fail("query", query, err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, e.fail("query", query, err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, e.fail("query", query, err)
	}

	return result, nil
}

func (e *SQLExecutor) Run(ctx context.Context, query string, args ...any) error {
	if _, err := e.db.ExecContext(ctx, e.dialect.Rebind(query), args...); err != nil {
		return e.fail("run", query, err)
	}
	return nil
}

func (e *SQLExecutor) Execute(ctx context.Context, query string, args ...any) (ExecResult, error) {
	res, err := e.db.ExecContext(ctx, e.dialect.Rebind(query), args...)
	if err != nil {
		return ExecResult{}, e.fail("execute", query, err)
	}

	var result ExecResult

	// Fora de um INSERT o sqlite repete o último rowid da conexão
	if isInsert(query) {
		if id, err := res.LastInsertId(); err == nil && id > 0 {
			result.LastInsertID = id
			result.HasLastInsertID = true
		}
	}
	if affected, err := res.RowsAffected(); err == nil {
		result.RowsAffected = affected
	}

	return result, nil
}

func (e *SQLExecutor) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return e.fail("ping", "", err)
	}
	return nil
}

func (e *SQLExecutor) Dialect() Dialect {
	return e.dialect
}

func (e *SQLExecutor) Close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("Failed to close database", zap.Error(err))
	}
}

func (e *SQLExecutor) fail(op string, query string, err error) error {
	e.logger.Error("Database operation failed",
		zap.String("op", op),
		zap.String("dialect", e.dialect.Name),
		zap.String("query", query),
		zap.Error(err))
	return &domain.StorageError{Op: op, Err: err}
}

func isInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT")
}
