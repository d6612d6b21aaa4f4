package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestaograos/auditoria/internal/auth"
	"github.com/gestaograos/auditoria/internal/repo"
)

type contextKey string

const contextKeyIdentidade contextKey = "identidade"

// Auth valida o token de acesso e injeta a Identidade no contexto. Toda
// operação protegida lê a identidade dali; sem token válido a requisição
// volta com 401 e o cliente é levado de volta ao login.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "faça o login para acessar esta página")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão expirada, faça o login novamente")
				return
			}

			id, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			identidade := repo.Identidade{
				ID:     id,
				Codigo: claims.Codigo,
				Nome:   claims.Nome,
				Papel:  repo.Papel(claims.Papel),
			}
			if !identidade.Papel.Valido() {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyIdentidade, identidade)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentidade recupera a identidade autenticada do contexto.
func GetIdentidade(ctx context.Context) (repo.Identidade, bool) {
	val, ok := ctx.Value(contextKeyIdentidade).(repo.Identidade)
	return val, ok
}

// WithIdentidade injeta uma identidade no contexto (usado em testes e no
// middleware Auth).
func WithIdentidade(ctx context.Context, identidade repo.Identidade) context.Context {
	return context.WithValue(ctx, contextKeyIdentidade, identidade)
}

// RequirePapeis garante que o usuário autenticado possua um dos papéis
// exigidos; caso contrário responde 403 sem chegar ao handler.
func RequirePapeis(papeis ...repo.Papel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identidade, ok := GetIdentidade(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "faça o login para acessar esta página")
				return
			}

			for _, papel := range papeis {
				if identidade.Papel == papel {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito")
		})
	}
}

// RequireAdmin restringe a rota a administradores.
func RequireAdmin(next http.Handler) http.Handler {
	return RequirePapeis(repo.PapelAdmin)(next)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
