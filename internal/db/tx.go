package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx executa uma função dentro de uma transação explícita. O rollback
// diferido cobre todos os caminhos de erro; o commit só acontece se fn
// retornar nil.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// WithTxRetry repete a transação até maxAttempts vezes enquanto shouldRetry
// aceitar o erro. Usado na geração de número de relatório, onde duas criações
// concorrentes podem colidir na constraint UNIQUE.
func WithTxRetry(ctx context.Context, pool *pgxpool.Pool, maxAttempts int, shouldRetry func(error) bool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = WithTx(ctx, pool, fn)
		if err == nil || !shouldRetry(err) {
			return err
		}
	}
	return err
}
