package db

import (
	"context"

	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Migrate aplica o schema. As declarações usam IF NOT EXISTS e podem ser
// reexecutadas em qualquer inicialização.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
