package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/service"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"credenciais inválidas", service.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH"},
		{"sessão inválida", service.ErrSessaoInvalida, http.StatusUnauthorized, "AUTH"},
		{"acesso negado", service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"não encontrado", repo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"duplicado", repo.ErrConflict, http.StatusConflict, "CONFLICT"},
		{
			"validação de cadastro",
			&service.ValidationError{Violacoes: []string{"código obrigatório"}},
			http.StatusBadRequest, "VALIDATION",
		},
		{"falha desconhecida", errors.New("banco fora do ar"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status %d, esperava %d", rec.Code, tc.status)
			}

			var resp struct {
				Error *ErrorBody `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decodificando resposta: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tc.code {
				t.Fatalf("code = %+v, esperava %s", resp.Error, tc.code)
			}
		})
	}
}

// Erro de cadastro (campo obrigatório ausente) é resposta de validação com as
// violações nos detalhes, nunca falha genérica de servidor.
func TestWriteDomainErrorDetalhaViolacoes(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, &service.ValidationError{
		Violacoes: []string{"código obrigatório", "senha deve ter pelo menos 8 caracteres"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, esperava 400", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string   `json:"code"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodificando resposta: %v", err)
	}
	if resp.Error.Code != "VALIDATION" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if len(resp.Error.Details) != 2 {
		t.Errorf("esperava as 2 violações nos detalhes, obteve %v", resp.Error.Details)
	}
}
