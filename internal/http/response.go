package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/service"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// WriteDomainError mapeia os erros de domínio para o status e código
// correspondentes; falhas desconhecidas viram 500 genérico com log.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", verr.Violacoes)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", service.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, service.ErrSessaoInvalida):
		WriteError(w, http.StatusUnauthorized, "AUTH", service.ErrSessaoInvalida.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, repo.ErrConflict):
		WriteError(w, http.StatusConflict, "CONFLICT", "código ou username já cadastrados", nil)
	default:
		log.Error().Err(err).Msg("http handler error")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
