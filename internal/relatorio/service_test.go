package relatorio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/util"
)

type stubCasoRepo struct {
	casos      map[int64]Caso
	atividades map[int64]Atividade
	logs       []LogExclusao

	proximoCasoID      int64
	proximaAtividadeID int64

	creates int
	deletes int
	updates int
}

func newStubCasoRepo() *stubCasoRepo {
	return &stubCasoRepo{
		casos:              map[int64]Caso{},
		atividades:         map[int64]Atividade{},
		proximoCasoID:      1,
		proximaAtividadeID: 1,
	}
}

func (s *stubCasoRepo) ListCasos(ctx context.Context) ([]Caso, error) {
	out := make([]Caso, 0, len(s.casos))
	for _, c := range s.casos {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCasoRepo) GetCaso(ctx context.Context, id int64) (Caso, error) {
	c, ok := s.casos[id]
	if !ok {
		return Caso{}, repo.ErrNotFound
	}
	return c, nil
}

func (s *stubCasoRepo) CreateCaso(ctx context.Context, titulo, tipo string, dataInicio time.Time, status string) (Caso, error) {
	c := Caso{
		ID:              s.proximoCasoID,
		Titulo:          titulo,
		NumeroRelatorio: formatNumero(dataInicio.Year(), int(s.proximoCasoID)),
		Tipo:            tipo,
		DataInicio:      dataInicio,
		Status:          status,
	}
	s.proximoCasoID++
	s.casos[c.ID] = c
	return c, nil
}

func (s *stubCasoRepo) DeleteCaso(ctx context.Context, casoID int64, ator repo.Identidade) error {
	c, ok := s.casos[casoID]
	if !ok {
		return repo.ErrNotFound
	}
	s.logs = append(s.logs, LogExclusao{
		IDCasoExcluido:          c.ID,
		NumeroRelatorioExcluido: c.NumeroRelatorio,
		TituloExcluido:          c.Titulo,
		UsuarioCodigo:           ator.Codigo,
		UsuarioNome:             ator.Nome,
		DataExclusao:            util.Now(),
	})
	delete(s.casos, casoID)
	return nil
}

func (s *stubCasoRepo) ListLogExclusoes(ctx context.Context) ([]LogExclusao, error) {
	return s.logs, nil
}

func (s *stubCasoRepo) ListAtividadesByCaso(ctx context.Context, casoID int64) ([]Atividade, error) {
	var out []Atividade
	for _, a := range s.atividades {
		if a.CasoID == casoID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubCasoRepo) GetAtividade(ctx context.Context, id int64) (Atividade, error) {
	a, ok := s.atividades[id]
	if !ok {
		return Atividade{}, repo.ErrNotFound
	}
	return a, nil
}

func (s *stubCasoRepo) CreateAtividade(ctx context.Context, a Atividade) (Atividade, error) {
	s.creates++
	a.ID = s.proximaAtividadeID
	s.proximaAtividadeID++
	s.atividades[a.ID] = a
	return a, nil
}

func (s *stubCasoRepo) UpdateAtividade(ctx context.Context, id int64, arg UpdateAtividadeParams) error {
	s.updates++
	a, ok := s.atividades[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.Descricao = arg.Descricao
	a.Situacao = arg.Situacao
	a.PeriodoInicio = arg.PeriodoInicio
	a.PeriodoFim = arg.PeriodoFim
	s.atividades[id] = a
	return nil
}

func (s *stubCasoRepo) DeleteAtividade(ctx context.Context, id int64) error {
	s.deletes++
	if _, ok := s.atividades[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.atividades, id)
	return nil
}

var atorTeste = repo.Identidade{ID: 7, Codigo: "1001", Nome: "Maria Silva", Papel: repo.PapelAuditor}

func TestNovoCasoPreenchePadroes(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	caso, err := svc.NovoCaso(context.Background())
	if err != nil {
		t.Fatalf("NovoCaso: %v", err)
	}

	if caso.Titulo != tituloNovoCaso {
		t.Errorf("titulo = %q", caso.Titulo)
	}
	if caso.Tipo != tipoPadrao {
		t.Errorf("tipo = %q", caso.Tipo)
	}
	if caso.Status != statusInicial {
		t.Errorf("status = %q", caso.Status)
	}
	if caso.NumeroRelatorio == "" {
		t.Error("numero_relatorio vazio")
	}
}

func TestCriarAtividadeAcumulaViolacoes(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	_, err := svc.CriarAtividade(context.Background(), 1, atorTeste, AtividadeInput{
		PeriodoInicio: "31/12/2025",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperava ValidationError, obteve %v", err)
	}
	if len(verr.Violacoes) != 3 {
		t.Fatalf("esperava 3 violações (descrição, situação, data), obteve %d: %v", len(verr.Violacoes), verr.Violacoes)
	}
	if stub.creates != 0 {
		t.Fatal("entrada inválida não pode chegar ao repositório")
	}
}

func TestCriarAtividadePeriodoInvertido(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	_, err := svc.CriarAtividade(context.Background(), 1, atorTeste, AtividadeInput{
		Descricao:     "Conferência de estoque",
		Situacao:      "EM ANDAMENTO",
		PeriodoInicio: "2025-03-10",
		PeriodoFim:    "2025-03-01",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperava ValidationError, obteve %v", err)
	}
	if len(verr.Violacoes) != 1 || !strings.Contains(verr.Violacoes[0], "posterior") {
		t.Fatalf("violações inesperadas: %v", verr.Violacoes)
	}
}

func TestCriarAtividadeCarimbaAutorEData(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	caso, err := svc.NovoCaso(context.Background())
	if err != nil {
		t.Fatalf("NovoCaso: %v", err)
	}

	atividade, err := svc.CriarAtividade(context.Background(), caso.ID, atorTeste, AtividadeInput{
		Descricao: "  Inspeção de moega  ",
		Situacao:  "FINALIZADO",
	})
	if err != nil {
		t.Fatalf("CriarAtividade: %v", err)
	}

	if atividade.Descricao != "Inspeção de moega" {
		t.Errorf("descrição não normalizada: %q", atividade.Descricao)
	}
	if atividade.RealizadoPorID == nil || *atividade.RealizadoPorID != atorTeste.ID {
		t.Error("autor não carimbado")
	}
	if !atividade.DataRegistro.Equal(util.Today()) {
		t.Errorf("data de registro = %v", atividade.DataRegistro)
	}
	if atividade.NaoConformidade != "" || atividade.Recomendacao != "" {
		t.Error("campos de não conformidade deveriam nascer vazios")
	}
}

func TestCriarAtividadeCasoInexistente(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	_, err := svc.CriarAtividade(context.Background(), 99, atorTeste, AtividadeInput{
		Descricao: "Qualquer",
		Situacao:  "PLANEJADO",
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("esperava ErrNotFound, obteve %v", err)
	}
	if stub.creates != 0 {
		t.Fatal("nada deveria ser gravado para caso inexistente")
	}
}

func TestExcluirCasoRegistraLog(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	caso, err := svc.NovoCaso(context.Background())
	if err != nil {
		t.Fatalf("NovoCaso: %v", err)
	}

	if err := svc.ExcluirCaso(context.Background(), caso.ID, atorTeste); err != nil {
		t.Fatalf("ExcluirCaso: %v", err)
	}

	logs, err := svc.LogExclusoes(context.Background())
	if err != nil {
		t.Fatalf("LogExclusoes: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("esperava exatamente 1 registro de exclusão, obteve %d", len(logs))
	}
	if logs[0].NumeroRelatorioExcluido != caso.NumeroRelatorio || logs[0].UsuarioCodigo != atorTeste.Codigo {
		t.Errorf("log incompleto: %+v", logs[0])
	}

	if err := svc.ExcluirCaso(context.Background(), caso.ID, atorTeste); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("segunda exclusão deveria dar ErrNotFound, obteve %v", err)
	}
	if len(stub.logs) != 1 {
		t.Fatal("exclusão falhada não pode gerar log")
	}
}

func TestAtualizarAtividadeValida(t *testing.T) {
	stub := newStubCasoRepo()
	svc := NewService(stub, nil)

	err := svc.AtualizarAtividade(context.Background(), 1, AtividadeInput{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("esperava ValidationError, obteve %v", err)
	}
	if stub.updates != 0 {
		t.Fatal("entrada inválida não pode chegar ao repositório")
	}

	err = svc.AtualizarAtividade(context.Background(), 1, AtividadeInput{
		Descricao: "Conferência",
		Situacao:  "FINALIZADO",
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("esperava ErrNotFound para atividade inexistente, obteve %v", err)
	}
}
