package repositories

import (
	"context"
	"strconv"
	"strings"
)

// Row é uma linha de resultado indexada pelo nome da coluna.
type Row map[string]any

// ExecResult normaliza o "último id inserido" dos dois drivers: o postgres
// devolve via RETURNING id e o sqlite via LastInsertId.
type ExecResult struct {
	LastInsertID    int64
	HasLastInsertID bool
	RowsAffected    int64
}

// QueryExecutor executa SQL parametrizado. As queries usam "?" como
// placeholder e cada implementação reescreve para o seu dialeto. Nenhum valor
// é interpolado no texto do SQL.
type QueryExecutor interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Run(ctx context.Context, query string, args ...any) error
	Execute(ctx context.Context, query string, args ...any) (ExecResult, error)
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close()
}

type Dialect struct {
	Name        string
	numbered    bool
	jsonParam   string
	returningID string
	atomicMerge bool
}

var (
	PostgresDialect = Dialect{
		Name:        "postgres",
		numbered:    true,
		jsonParam:   "CAST(? AS jsonb)",
		returningID: " RETURNING id",
		atomicMerge: true,
	}

	SQLiteDialect = Dialect{
		Name:      "sqlite",
		jsonParam: "?",
	}
)

// Rebind troca cada "?" fora de literais por $1, $2... quando o dialeto usa
// placeholders numerados.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// JSONParam é o placeholder de um parâmetro que carrega o blob data.
func (d Dialect) JSONParam() string {
	return d.jsonParam
}

// ReturningID é o sufixo de INSERT que devolve o id gerado, quando necessário.
func (d Dialect) ReturningID() string {
	return d.returningID
}

// SupportsAtomicMerge indica que o banco faz o merge raso do JSON num único
// UPDATE (jsonb ||).
func (d Dialect) SupportsAtomicMerge() bool {
	return d.atomicMerge
}
