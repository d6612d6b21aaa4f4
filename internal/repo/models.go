package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa um auditor cadastrado no sistema.
type Usuario struct {
	ID           int64     `json:"id"`
	Codigo       string    `json:"codigo"`
	NomeCompleto string    `json:"nome_completo"`
	Username     string    `json:"username"`
	SenhaHash    string    `json:"-"`
	Papel        Papel     `json:"papel"`
	CriadoEm     time.Time `json:"criado_em"`
}

// Identidade é o conteúdo autenticado carregado no contexto das requisições.
type Identidade struct {
	ID     int64  `json:"id"`
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
	Papel  Papel  `json:"papel"`
}

// Sessao modela a tabela de sessões ativas.
type Sessao struct {
	ID        uuid.UUID
	UsuarioID int64
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogada  bool
}
