package relatorio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaograos/auditoria/internal/db"
	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/util"
)

const dbTimeout = 3 * time.Second

// Repository fornece acesso aos casos de auditoria e suas atividades.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Caso é o relatório de auditoria, unidade principal de trabalho.
type Caso struct {
	ID              int64      `json:"id"`
	Titulo          string     `json:"titulo"`
	NumeroRelatorio string     `json:"numero_relatorio"`
	Tipo            string     `json:"tipo"`
	DataInicio      time.Time  `json:"data_inicio"`
	DataFinal       *time.Time `json:"data_final,omitempty"`
	Status          string     `json:"status"`
}

// Atividade é um procedimento de auditoria datado pertencente a um caso.
type Atividade struct {
	ID                 int64      `json:"id"`
	CasoID             int64      `json:"caso_id"`
	Descricao          string     `json:"atividade_desc"`
	TestesRealizados   string     `json:"testes_realizados"`
	ExtensaoExames     string     `json:"extensao_exames"`
	CriterioAmostragem string     `json:"criterio_amostragem"`
	PeriodoInicio      *time.Time `json:"periodo_inicio,omitempty"`
	PeriodoFim         *time.Time `json:"periodo_fim,omitempty"`
	ObservacaoResumo   string     `json:"observacao_resumo"`
	RealizadoPorID     *int64     `json:"realizado_por_id,omitempty"`
	RealizadoPorNome   string     `json:"realizado_por_nome,omitempty"`
	NaoConformidade    string     `json:"nao_conformidade"`
	Reincidente        bool       `json:"reincidente"`
	Recomendacao       string     `json:"recomendacao"`
	DataPSolucao       *time.Time `json:"data_p_solucao,omitempty"`
	DataRegistro       time.Time  `json:"data_registro"`
	Situacao           string     `json:"situacao"`
}

// LogExclusao é o registro imutável de uma exclusão de caso.
type LogExclusao struct {
	ID                      int64     `json:"id"`
	IDCasoExcluido          int64     `json:"id_caso_excluido"`
	NumeroRelatorioExcluido string    `json:"numero_relatorio_excluido"`
	TituloExcluido          string    `json:"titulo_excluido"`
	UsuarioCodigo           string    `json:"usuario_codigo"`
	UsuarioNome             string    `json:"usuario_nome"`
	DataExclusao            time.Time `json:"data_exclusao"`
}

const casoColunas = `id, titulo, numero_relatorio, tipo, data_inicio, data_final, status`

func scanCaso(row pgx.Row) (Caso, error) {
	var c Caso
	err := row.Scan(&c.ID, &c.Titulo, &c.NumeroRelatorio, &c.Tipo, &c.DataInicio, &c.DataFinal, &c.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Caso{}, repo.ErrNotFound
		}
		return Caso{}, err
	}
	return c, nil
}

// ListCasos devolve os casos mais recentes primeiro (painel principal).
func (r *Repository) ListCasos(ctx context.Context) ([]Caso, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+casoColunas+`
		FROM casos
		ORDER BY data_inicio DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var casos []Caso
	for rows.Next() {
		c, err := scanCaso(rows)
		if err != nil {
			return nil, err
		}
		casos = append(casos, c)
	}
	return casos, rows.Err()
}

// GetCaso recupera um caso pelo ID.
func (r *Repository) GetCaso(ctx context.Context, id int64) (Caso, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+casoColunas+`
		FROM casos
		WHERE id = $1
	`, id)
	return scanCaso(row)
}

// CreateCaso insere um caso novo gerando o número de relatório do ano corrente
// dentro da mesma transação. A constraint UNIQUE de numero_relatorio mais o
// retry cobrem criações concorrentes: perdedores da corrida recebem 23505 e
// tentam de novo com o número seguinte.
func (r *Repository) CreateCaso(ctx context.Context, titulo, tipo string, dataInicio time.Time, status string) (Caso, error) {
	ano := dataInicio.Year()

	var criado Caso
	err := db.WithTxRetry(ctx, r.pool, 3, repo.IsUniqueViolation, func(ctx context.Context, tx pgx.Tx) error {
		var ultimo *string
		err := tx.QueryRow(ctx, `
			SELECT numero_relatorio
			FROM casos
			WHERE numero_relatorio LIKE $1
			ORDER BY numero_relatorio DESC
			LIMIT 1
		`, fmt.Sprintf("%d.%%", ano)).Scan(&ultimo)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		anterior := ""
		if ultimo != nil {
			anterior = *ultimo
		}
		numero, err := proximoNumero(anterior, ano)
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO casos (titulo, tipo, data_inicio, status, numero_relatorio)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+casoColunas+`
		`, titulo, tipo, dataInicio, status, numero)
		criado, err = scanCaso(row)
		return err
	})
	if err != nil {
		return Caso{}, err
	}
	return criado, nil
}

// DeleteCaso remove o caso e grava exatamente um registro no log de exclusões,
// tudo ou nada. As atividades caem em cascata pela foreign key.
func (r *Repository) DeleteCaso(ctx context.Context, casoID int64, ator repo.Identidade) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var numero, titulo string
		err := tx.QueryRow(ctx, `
			SELECT numero_relatorio, titulo
			FROM casos
			WHERE id = $1
			FOR UPDATE
		`, casoID).Scan(&numero, &titulo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repo.ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO log_exclusoes (id_caso_excluido, numero_relatorio_excluido, titulo_excluido, usuario_codigo, usuario_nome, data_exclusao)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, casoID, numero, titulo, ator.Codigo, ator.Nome, util.Now()); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM casos WHERE id = $1`, casoID)
		return err
	})
}

// ListLogExclusoes devolve o histórico de exclusões, mais recentes primeiro.
func (r *Repository) ListLogExclusoes(ctx context.Context) ([]LogExclusao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, id_caso_excluido, numero_relatorio_excluido, titulo_excluido, usuario_codigo, usuario_nome, data_exclusao
		FROM log_exclusoes
		ORDER BY data_exclusao DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []LogExclusao
	for rows.Next() {
		var l LogExclusao
		if err := rows.Scan(&l.ID, &l.IDCasoExcluido, &l.NumeroRelatorioExcluido, &l.TituloExcluido, &l.UsuarioCodigo, &l.UsuarioNome, &l.DataExclusao); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

const atividadeColunas = `a.id, a.caso_id, a.atividade_desc, a.testes_realizados, a.extensao_exames,
		a.criterio_amostragem, a.periodo_inicio, a.periodo_fim, a.observacao_resumo,
		a.realizado_por_id, COALESCE(u.nome_completo, ''), a.nao_conformidade, a.reincidente,
		a.recomendacao, a.data_p_solucao, a.data_registro, a.situacao`

func scanAtividade(row pgx.Row) (Atividade, error) {
	var a Atividade
	var testes, extensao, criterio, observacao, naoConf, recomendacao *string
	err := row.Scan(&a.ID, &a.CasoID, &a.Descricao, &testes, &extensao,
		&criterio, &a.PeriodoInicio, &a.PeriodoFim, &observacao,
		&a.RealizadoPorID, &a.RealizadoPorNome, &naoConf, &a.Reincidente,
		&recomendacao, &a.DataPSolucao, &a.DataRegistro, &a.Situacao)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Atividade{}, repo.ErrNotFound
		}
		return Atividade{}, err
	}
	a.TestesRealizados = deref(testes)
	a.ExtensaoExames = deref(extensao)
	a.CriterioAmostragem = deref(criterio)
	a.ObservacaoResumo = deref(observacao)
	a.NaoConformidade = deref(naoConf)
	a.Recomendacao = deref(recomendacao)
	return a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListAtividadesByCaso devolve as atividades do caso com o nome de quem as
// realizou, na ordem de criação.
func (r *Repository) ListAtividadesByCaso(ctx context.Context, casoID int64) ([]Atividade, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+atividadeColunas+`
		FROM atividades a
		LEFT JOIN usuarios u ON u.id = a.realizado_por_id
		WHERE a.caso_id = $1
		ORDER BY a.id
	`, casoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atividades []Atividade
	for rows.Next() {
		a, err := scanAtividade(rows)
		if err != nil {
			return nil, err
		}
		atividades = append(atividades, a)
	}
	return atividades, rows.Err()
}

// GetAtividade recupera uma atividade pelo ID.
func (r *Repository) GetAtividade(ctx context.Context, id int64) (Atividade, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+atividadeColunas+`
		FROM atividades a
		LEFT JOIN usuarios u ON u.id = a.realizado_por_id
		WHERE a.id = $1
	`, id)
	return scanAtividade(row)
}

// CreateAtividade insere a atividade já validada e carimbada pelo serviço.
func (r *Repository) CreateAtividade(ctx context.Context, a Atividade) (Atividade, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO atividades (caso_id, atividade_desc, testes_realizados, extensao_exames,
			criterio_amostragem, periodo_inicio, periodo_fim, observacao_resumo,
			realizado_por_id, nao_conformidade, reincidente, recomendacao,
			data_p_solucao, data_registro, situacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, a.CasoID, a.Descricao, a.TestesRealizados, a.ExtensaoExames,
		a.CriterioAmostragem, a.PeriodoInicio, a.PeriodoFim, a.ObservacaoResumo,
		a.RealizadoPorID, a.NaoConformidade, a.Reincidente, a.Recomendacao,
		a.DataPSolucao, a.DataRegistro, a.Situacao).Scan(&id)
	if err != nil {
		return Atividade{}, err
	}
	a.ID = id
	return a, nil
}

// UpdateAtividadeParams contém apenas o subconjunto editável; os metadados de
// registro (caso, autor, data_registro) são imutáveis após a criação.
type UpdateAtividadeParams struct {
	Descricao          string
	TestesRealizados   string
	ExtensaoExames     string
	CriterioAmostragem string
	PeriodoInicio      *time.Time
	PeriodoFim         *time.Time
	ObservacaoResumo   string
	Situacao           string
}

// UpdateAtividade sobrescreve os campos editáveis da atividade.
func (r *Repository) UpdateAtividade(ctx context.Context, id int64, arg UpdateAtividadeParams) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE atividades
		SET atividade_desc = $2,
			testes_realizados = $3,
			extensao_exames = $4,
			criterio_amostragem = $5,
			periodo_inicio = $6,
			periodo_fim = $7,
			observacao_resumo = $8,
			situacao = $9
		WHERE id = $1
	`, id, arg.Descricao, arg.TestesRealizados, arg.ExtensaoExames,
		arg.CriterioAmostragem, arg.PeriodoInicio, arg.PeriodoFim,
		arg.ObservacaoResumo, arg.Situacao)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteAtividade remove uma atividade isolada, sem tocar no caso.
func (r *Repository) DeleteAtividade(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM atividades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
