package relatorio

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/util"
)

const (
	painelCacheKey = "casos:painel"
	painelCacheTTL = 30 * time.Second

	tituloNovoCaso = "Novo Relatório (preencher)"
	tipoPadrao     = "Auditoria"
	statusInicial  = "PLANEJADO"
)

// ValidationError agrega todas as regras violadas de uma submissão, para que
// o chamador exiba tudo de uma vez em vez de um erro por tentativa.
type ValidationError struct {
	Violacoes []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violacoes, "; ")
}

// CasoRepository é o contrato de persistência do módulo.
type CasoRepository interface {
	ListCasos(ctx context.Context) ([]Caso, error)
	GetCaso(ctx context.Context, id int64) (Caso, error)
	CreateCaso(ctx context.Context, titulo, tipo string, dataInicio time.Time, status string) (Caso, error)
	DeleteCaso(ctx context.Context, casoID int64, ator repo.Identidade) error
	ListLogExclusoes(ctx context.Context) ([]LogExclusao, error)
	ListAtividadesByCaso(ctx context.Context, casoID int64) ([]Atividade, error)
	GetAtividade(ctx context.Context, id int64) (Atividade, error)
	CreateAtividade(ctx context.Context, a Atividade) (Atividade, error)
	UpdateAtividade(ctx context.Context, id int64, arg UpdateAtividadeParams) error
	DeleteAtividade(ctx context.Context, id int64) error
}

// Service contém as regras do módulo de relatórios.
type Service struct {
	repo  CasoRepository
	cache *redis.Client
}

func NewService(repo CasoRepository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

// Painel lista os casos para o painel principal, com cache curto no Redis.
func (s *Service) Painel(ctx context.Context) ([]Caso, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, painelCacheKey).Bytes(); err == nil {
			var casos []Caso
			if json.Unmarshal(data, &casos) == nil {
				return casos, nil
			}
		}
	}

	casos, err := s.repo.ListCasos(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(casos); err == nil {
			_ = s.cache.Set(ctx, painelCacheKey, payload, painelCacheTTL).Err()
		}
	}

	return casos, nil
}

// NovoCaso cria um caso com título provisório e o número de relatório do ano
// corrente. O preenchimento real acontece depois, via atividades.
func (s *Service) NovoCaso(ctx context.Context) (Caso, error) {
	caso, err := s.repo.CreateCaso(ctx, tituloNovoCaso, tipoPadrao, util.Today(), statusInicial)
	if err != nil {
		return Caso{}, err
	}
	s.invalidatePainel(ctx)
	return caso, nil
}

// DetalheCaso devolve o caso e suas atividades com nome de quem realizou.
func (s *Service) DetalheCaso(ctx context.Context, casoID int64) (Caso, []Atividade, error) {
	caso, err := s.repo.GetCaso(ctx, casoID)
	if err != nil {
		return Caso{}, nil, err
	}

	atividades, err := s.repo.ListAtividadesByCaso(ctx, casoID)
	if err != nil {
		return Caso{}, nil, err
	}

	return caso, atividades, nil
}

// ExcluirCaso remove o caso registrando a exclusão no log de auditoria.
func (s *Service) ExcluirCaso(ctx context.Context, casoID int64, ator repo.Identidade) error {
	if err := s.repo.DeleteCaso(ctx, casoID, ator); err != nil {
		return err
	}
	s.invalidatePainel(ctx)
	return nil
}

// LogExclusoes devolve o histórico de exclusões (visão administrativa).
func (s *Service) LogExclusoes(ctx context.Context) ([]LogExclusao, error) {
	return s.repo.ListLogExclusoes(ctx)
}

// AtividadeInput carrega os campos editáveis submetidos pelo formulário.
// Datas chegam como texto AAAA-MM-DD e são validadas junto com o resto.
type AtividadeInput struct {
	Descricao          string `json:"atividade_desc"`
	TestesRealizados   string `json:"testes_realizados"`
	ExtensaoExames     string `json:"extensao_exames"`
	CriterioAmostragem string `json:"criterio_amostragem"`
	PeriodoInicio      string `json:"periodo_inicio"`
	PeriodoFim         string `json:"periodo_fim"`
	ObservacaoResumo   string `json:"observacao_resumo"`
	Situacao           string `json:"situacao"`
}

type atividadeCampos struct {
	periodoInicio *time.Time
	periodoFim    *time.Time
}

// validate junta todas as violações antes de qualquer persistência.
func (in AtividadeInput) validate() (atividadeCampos, *ValidationError) {
	var violacoes []string
	var campos atividadeCampos

	if strings.TrimSpace(in.Descricao) == "" {
		violacoes = append(violacoes, "o campo 'Atividade' é obrigatório")
	}
	if strings.TrimSpace(in.Situacao) == "" {
		violacoes = append(violacoes, "o campo 'Situação da Atividade' é obrigatório")
	}

	inicio, err := util.ParseDate(in.PeriodoInicio)
	if err != nil {
		violacoes = append(violacoes, "período inicial: "+err.Error())
	} else if !inicio.IsZero() {
		campos.periodoInicio = &inicio
	}

	fim, err := util.ParseDate(in.PeriodoFim)
	if err != nil {
		violacoes = append(violacoes, "período final: "+err.Error())
	} else if !fim.IsZero() {
		campos.periodoFim = &fim
	}

	if campos.periodoInicio != nil && campos.periodoFim != nil && campos.periodoInicio.After(*campos.periodoFim) {
		violacoes = append(violacoes, "o período inicial não pode ser posterior ao final")
	}

	if len(violacoes) > 0 {
		return atividadeCampos{}, &ValidationError{Violacoes: violacoes}
	}
	return campos, nil
}

// CriarAtividade valida e grava uma atividade nova, carimbando a data de
// registro e quem realizou. Campos de não conformidade nascem vazios.
func (s *Service) CriarAtividade(ctx context.Context, casoID int64, ator repo.Identidade, in AtividadeInput) (Atividade, error) {
	campos, verr := in.validate()
	if verr != nil {
		return Atividade{}, verr
	}

	if _, err := s.repo.GetCaso(ctx, casoID); err != nil {
		return Atividade{}, err
	}

	atorID := ator.ID
	atividade := Atividade{
		CasoID:             casoID,
		Descricao:          strings.TrimSpace(in.Descricao),
		TestesRealizados:   in.TestesRealizados,
		ExtensaoExames:     in.ExtensaoExames,
		CriterioAmostragem: in.CriterioAmostragem,
		PeriodoInicio:      campos.periodoInicio,
		PeriodoFim:         campos.periodoFim,
		ObservacaoResumo:   in.ObservacaoResumo,
		RealizadoPorID:     &atorID,
		RealizadoPorNome:   ator.Nome,
		DataRegistro:       util.Today(),
		Situacao:           strings.TrimSpace(in.Situacao),
	}

	return s.repo.CreateAtividade(ctx, atividade)
}

// AtualizarAtividade valida e sobrescreve apenas o subconjunto editável.
func (s *Service) AtualizarAtividade(ctx context.Context, atividadeID int64, in AtividadeInput) error {
	campos, verr := in.validate()
	if verr != nil {
		return verr
	}

	return s.repo.UpdateAtividade(ctx, atividadeID, UpdateAtividadeParams{
		Descricao:          strings.TrimSpace(in.Descricao),
		TestesRealizados:   in.TestesRealizados,
		ExtensaoExames:     in.ExtensaoExames,
		CriterioAmostragem: in.CriterioAmostragem,
		PeriodoInicio:      campos.periodoInicio,
		PeriodoFim:         campos.periodoFim,
		ObservacaoResumo:   in.ObservacaoResumo,
		Situacao:           strings.TrimSpace(in.Situacao),
	})
}

// ExcluirAtividade remove uma atividade sem afetar o caso.
func (s *Service) ExcluirAtividade(ctx context.Context, atividadeID int64) error {
	return s.repo.DeleteAtividade(ctx, atividadeID)
}

func (s *Service) invalidatePainel(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, painelCacheKey).Err()
	}
}
