package relatorio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaograos/auditoria/internal/http/middleware"
	"github.com/gestaograos/auditoria/internal/repo"
)

// Handler orquestra rotas do módulo de relatórios.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes adiciona as rotas autenticadas de casos e atividades.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/casos", func(r chi.Router) {
		r.Get("/", h.handlePainel)
		r.Post("/", h.handleNovoCaso)
		r.Get("/{id}", h.handleDetalheCaso)
		r.Delete("/{id}", h.handleExcluirCaso)
		r.Post("/{id}/atividades", h.handleCriarAtividade)
	})

	r.Route("/atividades", func(r chi.Router) {
		r.Put("/{id}", h.handleAtualizarAtividade)
		r.Delete("/{id}", h.handleExcluirAtividade)
	})

	r.Get("/opcoes", h.handleOpcoes)
}

// RegisterAdminRoutes adiciona as rotas restritas a administradores.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/exclusoes", h.handleLogExclusoes)
}

func (h *Handler) handlePainel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	ator, ok := httpmiddleware.GetIdentidade(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	casos, err := h.service.Painel(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	logRequest(ctx, "GET /casos", ator, start)
	writeJSON(w, http.StatusOK, map[string]any{"casos": casos})
}

func (h *Handler) handleNovoCaso(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	ator, ok := httpmiddleware.GetIdentidade(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	caso, err := h.service.NovoCaso(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	logRequest(ctx, "POST /casos", ator, start)
	writeJSON(w, http.StatusCreated, map[string]any{"caso": caso})
}

func (h *Handler) handleDetalheCaso(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	casoID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "caso inválido", nil)
		return
	}

	caso, atividades, err := h.service.DetalheCaso(ctx, casoID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"caso": caso, "atividades": atividades})
}

func (h *Handler) handleExcluirCaso(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	ator, ok := httpmiddleware.GetIdentidade(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	casoID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "caso inválido", nil)
		return
	}

	if err := h.service.ExcluirCaso(ctx, casoID, ator); err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "DELETE /casos", ator, start)
	writeJSON(w, http.StatusOK, map[string]any{"excluido": casoID})
}

func (h *Handler) handleCriarAtividade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ator, ok := httpmiddleware.GetIdentidade(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	casoID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "caso inválido", nil)
		return
	}

	var input AtividadeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atividade, err := h.service.CriarAtividade(ctx, casoID, ator, input)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"atividade": atividade})
}

func (h *Handler) handleAtualizarAtividade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	atividadeID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "atividade inválida", nil)
		return
	}

	var input AtividadeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.service.AtualizarAtividade(ctx, atividadeID, input); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"atualizada": atividadeID})
}

func (h *Handler) handleExcluirAtividade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	atividadeID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "atividade inválida", nil)
		return
	}

	if err := h.service.ExcluirAtividade(ctx, atividadeID); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"excluida": atividadeID})
}

func (h *Handler) handleOpcoes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewCatalogo())
}

func (h *Handler) handleLogExclusoes(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.LogExclusoes(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"exclusoes": logs})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func handleDomainError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", verr.Violacoes)
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, repo.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "registro duplicado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("relatorio handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, ator repo.Identidade, start time.Time) {
	logger := log.Ctx(ctx)
	if logger == nil {
		logger = &log.Logger
	}
	reqID := chimiddleware.GetReqID(ctx)
	logger.Info().Str("request_id", reqID).Str("usuario", ator.Codigo).Str("label", label).Dur("duration", time.Since(start)).Msg("relatorio_request")
}

// Helpers de resposta JSON compatíveis com o resto do projeto.
type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}
