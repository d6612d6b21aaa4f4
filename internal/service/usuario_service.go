package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gestaograos/auditoria/internal/auth"
	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/util"
)

// ValidationError agrega todas as regras de cadastro violadas, para que o
// formulário mostre tudo de uma vez.
type ValidationError struct {
	Violacoes []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violacoes, "; ")
}

type usuarioRepository interface {
	ListUsuarios(ctx context.Context) ([]repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
	CreateUsuario(ctx context.Context, arg repo.CreateUsuarioParams) (repo.Usuario, error)
	UpdateUsuario(ctx context.Context, arg repo.UpdateUsuarioParams) (repo.Usuario, error)
	UpdateSenhaHash(ctx context.Context, id int64, hash string) error
}

// UsuarioService centraliza os casos de uso de gestão de contas.
type UsuarioService struct {
	repo usuarioRepository
}

// NewUsuarioService cria nova instância do serviço.
func NewUsuarioService(r usuarioRepository) *UsuarioService {
	return &UsuarioService{repo: r}
}

// List devolve os usuários cadastrados (rota restrita a administradores).
func (s *UsuarioService) List(ctx context.Context) ([]repo.Usuario, error) {
	return s.repo.ListUsuarios(ctx)
}

// Get devolve um usuário pelo ID.
func (s *UsuarioService) Get(ctx context.Context, id int64) (repo.Usuario, error) {
	return s.repo.GetUsuarioByID(ctx, id)
}

// CreateUsuarioInput agrupa os campos do cadastro.
type CreateUsuarioInput struct {
	Codigo       string `json:"codigo"`
	NomeCompleto string `json:"nome_completo"`
	Senha        string `json:"senha"`
	Papel        string `json:"papel"`
}

// Create cadastra um usuário novo. O username é derivado do nome completo e
// recebe sufixo numérico em caso de colisão.
func (s *UsuarioService) Create(ctx context.Context, ator repo.Identidade, in CreateUsuarioInput) (repo.Usuario, error) {
	if err := Autorizar(ator, repo.PapelAdmin); err != nil {
		return repo.Usuario{}, err
	}

	var violacoes []string
	if err := util.RequireString(in.Codigo, "código"); err != nil {
		violacoes = append(violacoes, err.Error())
	}
	if err := util.RequireString(in.NomeCompleto, "nome completo"); err != nil {
		violacoes = append(violacoes, err.Error())
	}
	if err := util.ValidatePassword(in.Senha); err != nil {
		violacoes = append(violacoes, err.Error())
	}

	papel := repo.NormalizePapel(in.Papel)
	if !papel.Valido() {
		violacoes = append(violacoes, "papel inválido")
	}

	base := DeriveUsername(in.NomeCompleto)
	if base == "" && strings.TrimSpace(in.NomeCompleto) != "" {
		violacoes = append(violacoes, "nome completo inválido")
	}

	if len(violacoes) > 0 {
		return repo.Usuario{}, &ValidationError{Violacoes: violacoes}
	}

	hash, err := auth.Hash(in.Senha)
	if err != nil {
		return repo.Usuario{}, err
	}

	username := base
	for tentativa := 2; ; tentativa++ {
		criado, err := s.repo.CreateUsuario(ctx, repo.CreateUsuarioParams{
			Codigo:       in.Codigo,
			NomeCompleto: in.NomeCompleto,
			Username:     username,
			SenhaHash:    hash,
			Papel:        papel,
		})
		if err == nil {
			return criado, nil
		}
		// Colisão de username ganha novo sufixo; código duplicado é
		// conflito de verdade e sobe para o chamador.
		if repo.UniqueConstraint(err) == "usuarios_username_key" && tentativa <= 10 {
			username = fmt.Sprintf("%s%d", base, tentativa)
			continue
		}
		return repo.Usuario{}, err
	}
}

// UpdateUsuarioInput agrupa os campos editáveis do cadastro.
type UpdateUsuarioInput struct {
	ID           int64  `json:"-"`
	Codigo       string `json:"codigo"`
	NomeCompleto string `json:"nome_completo"`
	Username     string `json:"username"`
	Papel        string `json:"papel"`
	NovaSenha    string `json:"nova_senha"`
}

// Update altera o cadastro. Qualquer usuário edita o próprio registro, mas o
// papel submetido só é aplicado se o ator for administrador; fora isso o
// papel armazenado é mantido em silêncio. Editar registro alheio exige
// administrador.
func (s *UsuarioService) Update(ctx context.Context, ator repo.Identidade, in UpdateUsuarioInput) (repo.Usuario, error) {
	proprio := ator.ID == in.ID
	if !proprio {
		if err := Autorizar(ator, repo.PapelAdmin); err != nil {
			return repo.Usuario{}, err
		}
	}

	atual, err := s.repo.GetUsuarioByID(ctx, in.ID)
	if err != nil {
		return repo.Usuario{}, err
	}

	var violacoes []string
	if err := util.RequireString(in.Codigo, "código"); err != nil {
		violacoes = append(violacoes, err.Error())
	}
	if err := util.RequireString(in.NomeCompleto, "nome completo"); err != nil {
		violacoes = append(violacoes, err.Error())
	}

	papel := atual.Papel
	if Autorizar(ator, repo.PapelAdmin) == nil && strings.TrimSpace(in.Papel) != "" {
		submetido := repo.NormalizePapel(in.Papel)
		if !submetido.Valido() {
			violacoes = append(violacoes, "papel inválido")
		} else {
			papel = submetido
		}
	}

	if strings.TrimSpace(in.NovaSenha) != "" {
		if err := util.ValidatePassword(in.NovaSenha); err != nil {
			violacoes = append(violacoes, err.Error())
		}
	}

	if len(violacoes) > 0 {
		return repo.Usuario{}, &ValidationError{Violacoes: violacoes}
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = atual.Username
	}

	atualizado, err := s.repo.UpdateUsuario(ctx, repo.UpdateUsuarioParams{
		ID:           in.ID,
		Codigo:       in.Codigo,
		NomeCompleto: in.NomeCompleto,
		Username:     username,
		Papel:        papel,
	})
	if err != nil {
		return repo.Usuario{}, err
	}

	if strings.TrimSpace(in.NovaSenha) != "" {
		hash, err := auth.Hash(in.NovaSenha)
		if err != nil {
			return repo.Usuario{}, err
		}
		if err := s.repo.UpdateSenhaHash(ctx, in.ID, hash); err != nil {
			return repo.Usuario{}, err
		}
	}

	return atualizado, nil
}

// DeriveUsername monta o username a partir do nome completo: primeiro e
// último nomes, minúsculos e sem acentos ("KAIQUE RAFAEL DOS SANTOS
// OLIVEIRA" vira "kaique.oliveira").
func DeriveUsername(nomeCompleto string) string {
	campos := strings.Fields(strings.ToLower(removeAcentos(strings.TrimSpace(nomeCompleto))))
	if len(campos) == 0 {
		return ""
	}
	if len(campos) == 1 {
		return campos[0]
	}
	return campos[0] + "." + campos[len(campos)-1]
}

func removeAcentos(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
