package service

import (
	"errors"

	"github.com/gestaograos/auditoria/internal/repo"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// Autorizar permite a operação somente se o papel da identidade estiver entre
// os exigidos. A comparação é sobre a enumeração fechada de papéis; valores
// fora dela nunca passam.
func Autorizar(identidade repo.Identidade, papeis ...repo.Papel) error {
	if !identidade.Papel.Valido() {
		return ErrForbidden
	}
	for _, papel := range papeis {
		if identidade.Papel == papel {
			return nil
		}
	}
	return ErrForbidden
}
