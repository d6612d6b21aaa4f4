package relatorio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/gestaograos/auditoria/internal/http/middleware"
)

func novoRouterTeste(stub *stubCasoRepo) chi.Router {
	handler := NewHandler(NewService(stub, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := httpmiddleware.WithIdentidade(req.Context(), atorTeste)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.RegisterRoutes(r)
	handler.RegisterAdminRoutes(r)
	return r
}

func TestRotasCasos(t *testing.T) {
	stub := newStubCasoRepo()
	router := novoRouterTeste(stub)

	// Cria o caso pela rota para exercitar o fluxo inteiro.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/casos", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /casos: status %d, corpo %s", rec.Code, rec.Body.String())
	}

	var criado struct {
		Data struct {
			Caso Caso `json:"caso"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &criado); err != nil {
		t.Fatalf("decodificando resposta: %v", err)
	}
	casoID := strconv.FormatInt(criado.Data.Caso.ID, 10)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"painel", http.MethodGet, "/casos", "", http.StatusOK},
		{"detalhe", http.MethodGet, "/casos/" + casoID, "", http.StatusOK},
		{"detalhe inexistente", http.MethodGet, "/casos/999", "", http.StatusNotFound},
		{"id inválido", http.MethodGet, "/casos/abc", "", http.StatusBadRequest},
		{"opções", http.MethodGet, "/opcoes", "", http.StatusOK},
		{
			"atividade inválida", http.MethodPost, "/casos/" + casoID + "/atividades",
			`{"atividade_desc":"","situacao":""}`, http.StatusBadRequest,
		},
		{
			"atividade válida", http.MethodPost, "/casos/" + casoID + "/atividades",
			`{"atividade_desc":"Inspeção","situacao":"PLANEJADO"}`, http.StatusCreated,
		},
		{
			"atualizar atividade", http.MethodPut, "/atividades/1",
			`{"atividade_desc":"Inspeção revisada","situacao":"FINALIZADO"}`, http.StatusOK,
		},
		{"excluir atividade", http.MethodDelete, "/atividades/1", "", http.StatusOK},
		{"excluir atividade de novo", http.MethodDelete, "/atividades/1", "", http.StatusNotFound},
		{"excluir caso", http.MethodDelete, "/casos/" + casoID, "", http.StatusOK},
		{"log de exclusões", http.MethodGet, "/exclusoes", "", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("%s %s: status %d, esperava %d, corpo %s", tc.method, tc.path, rec.Code, tc.status, rec.Body.String())
			}
		})
	}

	if len(stub.logs) != 1 {
		t.Fatalf("esperava 1 registro no log de exclusões, obteve %d", len(stub.logs))
	}
}

func TestRotaSemIdentidade(t *testing.T) {
	handler := NewHandler(NewService(newStubCasoRepo(), nil))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/casos", nil).WithContext(context.Background())
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("sem identidade esperava 401, obteve %d", rec.Code)
	}
}

func TestViolacoesAparecemNosDetalhes(t *testing.T) {
	stub := newStubCasoRepo()
	router := novoRouterTeste(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/casos", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /casos: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/casos/1/atividades", strings.NewReader(`{"periodo_inicio":"errado"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
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
	if len(resp.Error.Details) < 3 {
		t.Errorf("esperava todas as violações nos detalhes, obteve %v", resp.Error.Details)
	}
}
