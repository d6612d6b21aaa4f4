package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaograos/auditoria/internal/auth"
	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("código ou senha inválidos")
	// ErrSessaoInvalida indica sessão inexistente, revogada ou expirada.
	ErrSessaoInvalida = errors.New("sessão inválida")
)

type authRepository interface {
	GetUsuarioByCodigo(ctx context.Context, codigo string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
	UpdateSenhaHash(ctx context.Context, id int64, hash string) error
	InsertSessao(ctx context.Context, arg repo.InsertSessaoParams) (repo.Sessao, error)
	GetSessaoByHash(ctx context.Context, tokenHash string) (repo.Sessao, error)
	RevogarSessao(ctx context.Context, tokenHash string) error
	InvalidarOutrasSessoes(ctx context.Context, usuarioID int64, manterHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	sessionTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, sessionTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, sessionTTL: sessionTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string          `json:"access_token"`
	SessionToken  string          `json:"session_token"`
	Identidade    repo.Identidade `json:"usuario"`
	SessionExpiry time.Time       `json:"session_expiry"`
}

// Login autentica pelo par código/senha. Qualquer causa de falha (código
// desconhecido ou senha errada) devolve o mesmo ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, codigo, senha string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: código não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("codigo", user.Codigo).Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	// Hashes da base antiga (SHA-256 sem salt) são promovidos a Argon2id
	// no primeiro login que confirmar a senha.
	if auth.IsLegacyHash(user.SenhaHash) {
		if novo, err := auth.Hash(senha); err == nil {
			if err := s.repo.UpdateSenhaHash(ctx, user.ID, novo); err != nil {
				log.Warn().Err(err).Int64("usuario_id", user.ID).Msg("login: falha ao atualizar hash legado")
			}
		}
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) issueSession(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	identidade := repo.Identidade{
		ID:     user.ID,
		Codigo: user.Codigo,
		Nome:   user.NomeCompleto,
		Papel:  user.Papel,
	}

	accessToken, _, err := s.jwt.GenerateAccessToken(
		formatID(user.ID), user.Codigo, user.NomeCompleto, string(user.Papel))
	if err != nil {
		return nil, err
	}

	rawToken, tokenHash, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	expiracao := util.Now().Add(s.sessionTTL)
	if _, err := s.repo.InsertSessao(ctx, repo.InsertSessaoParams{
		ID:        uuid.New(),
		UsuarioID: user.ID,
		TokenHash: tokenHash,
		Expiracao: expiracao,
		CriadoEm:  util.Now(),
	}); err != nil {
		return nil, err
	}

	if err := s.repo.InvalidarOutrasSessoes(ctx, user.ID, tokenHash); err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, auth.SessionRedisKey(tokenHash), "active", time.Until(expiracao)).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   accessToken,
		SessionToken:  rawToken,
		Identidade:    identidade,
		SessionExpiry: expiracao,
	}, nil
}

// Refresh troca o token de sessão por um novo par de tokens, rotacionando a
// sessão anterior.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrSessaoInvalida
	}

	hash := auth.HashSessionToken(rawToken)
	sessao, err := s.repo.GetSessaoByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSessaoInvalida
		}
		return nil, err
	}

	if sessao.Revogada || util.Now().After(sessao.Expiracao) {
		return nil, ErrSessaoInvalida
	}

	redisKey := auth.SessionRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrSessaoInvalida
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrSessaoInvalida
	}

	user, err := s.repo.GetUsuarioByID(ctx, sessao.UsuarioID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSessaoInvalida
		}
		return nil, err
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RevogarSessao(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga a sessão atual. Token ausente é tratado como logout já feito.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashSessionToken(rawToken)
	if err := s.repo.RevogarSessao(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.SessionRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe devolve o cadastro completo do usuário autenticado.
func (s *AuthService) GetMe(ctx context.Context, id int64) (repo.Usuario, error) {
	return s.repo.GetUsuarioByID(ctx, id)
}
