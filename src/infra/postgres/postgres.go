package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema da tabela única. Todos os tipos de entidade dividem a mesma tabela e
// se diferenciam apenas por entity_type.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	id          SERIAL PRIMARY KEY,
	entity_type TEXT        NOT NULL,
	data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_entities_entity_type ON entities (entity_type);
`

// NewPostgresClient abre o pool a partir de uma connection string. O flag ssl
// força sslmode=require quando a URL não define outro modo.
func NewPostgresClient(databaseURL string, ssl bool, maxConnections int) (*pgxpool.Pool, error) {
	dsn, err := withSSLMode(databaseURL, ssl)
	if err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	config.MaxConns = int32(maxConnections) //nolint:all
	config.MinConns = 1

	// Idle timeout - economiza recursos
	config.MaxConnIdleTime = 5 * time.Minute

	// Lifetime das conexões - evita problemas de timeout do PostgreSQL
	config.MaxConnLifetime = 30 * time.Minute

	config.HealthCheckPeriod = 1 * time.Minute

	config.ConnConfig.RuntimeParams = map[string]string{
		"timezone":                            "UTC",
		"statement_timeout":                   "30s",
		"lock_timeout":                        "10s",
		"idle_in_transaction_session_timeout": "60s",
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema cria a tabela entities caso ainda não exista.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}

func withSSLMode(databaseURL string, ssl bool) (string, error) {
	if databaseURL == "" {
		return "", errors.New("database url can't be empty")
	}

	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}

	query := parsed.Query()
	if query.Get("sslmode") == "" {
		if ssl {
			query.Set("sslmode", "require")
		} else {
			query.Set("sslmode", "disable")
		}
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

// IsConnectionError indica falha de rede/conexão com o banco.
func IsConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
