package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/gestaograos/auditoria/internal/http/middleware"
	"github.com/gestaograos/auditoria/internal/service"
)

// ListUsuarios devolve todos os usuários cadastrados (admin).
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarios.List(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

// GetUsuario devolve um usuário pelo ID (admin).
func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "usuário inválido", nil)
		return
	}

	usuario, err := h.usuarios.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": usuario})
}

// CreateUsuario cadastra um usuário novo (admin).
func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	ator, ok := httpmiddleware.GetIdentidade(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	var input service.CreateUsuarioInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	usuario, err := h.usuarios.Create(r.Context(), ator, input)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"usuario": usuario})
}

// UpdateUsuario altera um cadastro. A regra de quem pode editar o quê (dono
// do registro versus administrador) fica no serviço.
func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	ator, ok := httpmiddleware.GetIdentidade(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "usuário inválido", nil)
		return
	}

	var input service.UpdateUsuarioInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	input.ID = id

	usuario, err := h.usuarios.Update(r.Context(), ator, input)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": usuario})
}
