package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries concentra o acesso às tabelas de usuários e sessões.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria o repositório sobre o pool compartilhado.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const usuarioColunas = `id, codigo, nome_completo, username, senha_hash, papel, criado_em`

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Codigo, &u.NomeCompleto, &u.Username, &u.SenhaHash, &u.Papel, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// GetUsuarioByCodigo recupera usuário pelo código funcional único.
func (q *Queries) GetUsuarioByCodigo(ctx context.Context, codigo string) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `
        SELECT `+usuarioColunas+`
        FROM usuarios
        WHERE codigo = $1
    `, strings.TrimSpace(codigo))
	return scanUsuario(row)
}

// GetUsuarioByID recupera usuário pelo ID.
func (q *Queries) GetUsuarioByID(ctx context.Context, id int64) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `
        SELECT `+usuarioColunas+`
        FROM usuarios
        WHERE id = $1
    `, id)
	return scanUsuario(row)
}

// ListUsuarios devolve todos os usuários ordenados pelo nome.
func (q *Queries) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	rows, err := q.pool.Query(ctx, `
        SELECT `+usuarioColunas+`
        FROM usuarios
        ORDER BY nome_completo
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// CreateUsuarioParams agrupa os campos de criação.
type CreateUsuarioParams struct {
	Codigo       string
	NomeCompleto string
	Username     string
	SenhaHash    string
	Papel        Papel
}

// CreateUsuario insere novo usuário. Violações de unicidade de código ou
// username viram ErrConflict.
func (q *Queries) CreateUsuario(ctx context.Context, arg CreateUsuarioParams) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO usuarios (codigo, nome_completo, username, senha_hash, papel)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+usuarioColunas+`
    `,
		strings.TrimSpace(arg.Codigo),
		strings.TrimSpace(arg.NomeCompleto),
		strings.TrimSpace(arg.Username),
		arg.SenhaHash,
		arg.Papel,
	)

	u, err := scanUsuario(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return Usuario{}, ErrConflict
		}
		return Usuario{}, err
	}
	return u, nil
}

// UpdateUsuarioParams agrupa os campos editáveis.
type UpdateUsuarioParams struct {
	ID           int64
	Codigo       string
	NomeCompleto string
	Username     string
	Papel        Papel
}

// UpdateUsuario altera os dados cadastrais do usuário.
func (q *Queries) UpdateUsuario(ctx context.Context, arg UpdateUsuarioParams) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `
        UPDATE usuarios
        SET codigo = $2,
            nome_completo = $3,
            username = $4,
            papel = $5
        WHERE id = $1
        RETURNING `+usuarioColunas+`
    `,
		arg.ID,
		strings.TrimSpace(arg.Codigo),
		strings.TrimSpace(arg.NomeCompleto),
		strings.TrimSpace(arg.Username),
		arg.Papel,
	)

	u, err := scanUsuario(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return Usuario{}, ErrConflict
		}
		return Usuario{}, err
	}
	return u, nil
}

// UpdateSenhaHash troca o hash de senha do usuário.
func (q *Queries) UpdateSenhaHash(ctx context.Context, id int64, hash string) error {
	tag, err := q.pool.Exec(ctx, `
        UPDATE usuarios SET senha_hash = $2 WHERE id = $1
    `, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSessaoParams agrupa os campos da nova sessão.
type InsertSessaoParams struct {
	ID        uuid.UUID
	UsuarioID int64
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
}

// InsertSessao registra uma sessão ativa.
func (q *Queries) InsertSessao(ctx context.Context, arg InsertSessaoParams) (Sessao, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO sessoes (id, usuario_id, token_hash, expiracao, criado_em)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, usuario_id, token_hash, expiracao, criado_em, revogada
    `, arg.ID, arg.UsuarioID, arg.TokenHash, arg.Expiracao, arg.CriadoEm)

	var s Sessao
	if err := row.Scan(&s.ID, &s.UsuarioID, &s.TokenHash, &s.Expiracao, &s.CriadoEm, &s.Revogada); err != nil {
		return Sessao{}, err
	}
	return s, nil
}

// GetSessaoByHash localiza sessão pelo hash do token.
func (q *Queries) GetSessaoByHash(ctx context.Context, tokenHash string) (Sessao, error) {
	var s Sessao
	err := q.pool.QueryRow(ctx, `
        SELECT id, usuario_id, token_hash, expiracao, criado_em, revogada
        FROM sessoes
        WHERE token_hash = $1
    `, tokenHash).Scan(&s.ID, &s.UsuarioID, &s.TokenHash, &s.Expiracao, &s.CriadoEm, &s.Revogada)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sessao{}, ErrNotFound
		}
		return Sessao{}, err
	}
	return s, nil
}

// RevogarSessao marca a sessão como encerrada.
func (q *Queries) RevogarSessao(ctx context.Context, tokenHash string) error {
	tag, err := q.pool.Exec(ctx, `
        UPDATE sessoes SET revogada = true WHERE token_hash = $1
    `, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidarOutrasSessoes revoga todas as sessões do usuário exceto a atual.
func (q *Queries) InvalidarOutrasSessoes(ctx context.Context, usuarioID int64, manterHash string) error {
	_, err := q.pool.Exec(ctx, `
        UPDATE sessoes SET revogada = true
        WHERE usuario_id = $1 AND token_hash <> $2 AND NOT revogada
    `, usuarioID, manterHash)
	return err
}
