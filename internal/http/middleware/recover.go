package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Recover transforma panics em resposta 500 sanitizada, preservando o
// request id e a rota no log para correlação.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("panic recuperado")
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
