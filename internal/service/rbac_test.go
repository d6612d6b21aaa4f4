package service

import (
	"errors"
	"testing"

	"github.com/gestaograos/auditoria/internal/repo"
)

func TestAutorizar(t *testing.T) {
	tests := []struct {
		name    string
		papel   repo.Papel
		exigido []repo.Papel
		ok      bool
	}{
		{"papel exato", repo.PapelAdmin, []repo.Papel{repo.PapelAdmin}, true},
		{"um entre vários", repo.PapelManager, []repo.Papel{repo.PapelAdmin, repo.PapelManager}, true},
		{"papel insuficiente", repo.PapelAuditor, []repo.Papel{repo.PapelAdmin}, false},
		{"papel fora da enumeração", repo.Papel("SuperUser"), []repo.Papel{repo.PapelAdmin}, false},
		{"papel vazio", repo.Papel(""), []repo.Papel{repo.PapelAuditor}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Autorizar(repo.Identidade{ID: 1, Papel: tc.papel}, tc.exigido...)
			if tc.ok && err != nil {
				t.Fatalf("esperava autorização, obteve %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrForbidden) {
				t.Fatalf("esperava ErrForbidden, obteve %v", err)
			}
		})
	}
}
