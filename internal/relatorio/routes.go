package relatorio

import (
	"github.com/go-chi/chi/v5"
)

// Mount adiciona as rotas do módulo no router autenticado.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
