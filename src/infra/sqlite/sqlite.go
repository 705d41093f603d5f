package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Schema equivalente ao do postgres, usado pelo modo embutido e pelos testes.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT     NOT NULL,
	data        TEXT     NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entities_entity_type ON entities (entity_type);
`

const MemoryPath = ":memory:"

// IsSQLiteURL reconhece DATABASE_URL no formato sqlite://path ou sqlite::memory:.
func IsSQLiteURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "sqlite:")
}

// PathFromURL extrai o caminho do arquivo de uma URL sqlite.
func PathFromURL(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, "sqlite:")
	path = strings.TrimPrefix(path, "//")
	if path == "" {
		return MemoryPath
	}
	return path
}

// NewSQLiteClient abre o banco embutido e aplica o schema.
func NewSQLiteClient(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// Cada conexão de um banco :memory: é um banco diferente; e o sqlite só
	// aceita um escritor por vez.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return db, nil
}
