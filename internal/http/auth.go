package http

import (
	"encoding/json"
	"net/http"
	"strings"

	httpmiddleware "github.com/gestaograos/auditoria/internal/http/middleware"
)

// Login autentica pelo par código/senha e abre uma sessão nova.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Codigo string `json:"codigo"`
		Senha  string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.Codigo) == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "código e senha são obrigatórios", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Codigo, payload.Senha)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// Refresh rotaciona a sessão a partir do token atual.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionToken string `json:"session_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), payload.SessionToken)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// Logout revoga a sessão atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionToken string `json:"session_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	if err := h.authService.Logout(r.Context(), payload.SessionToken); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "você saiu do sistema"})
}

// Me devolve o cadastro do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identidade, ok := httpmiddleware.GetIdentidade(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	usuario, err := h.authService.GetMe(r.Context(), identidade.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": usuario})
}
