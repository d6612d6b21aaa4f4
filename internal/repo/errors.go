package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict indica violação de unicidade (código, username ou número de relatório).
	ErrConflict = errors.New("registro duplicado")
)

// IsUniqueViolation detecta violação de constraint UNIQUE do Postgres.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UniqueConstraint devolve o nome da constraint violada, ou vazio quando o
// erro não for de unicidade.
func UniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}
