package repo

import "strings"

// Papel é o nível de acesso de um usuário. Enumeração fechada: qualquer
// valor fora dela é rejeitado na escrita.
type Papel string

const (
	PapelAuditor Papel = "Auditor"
	PapelManager Papel = "Manager"
	PapelAdmin   Papel = "Admin"
)

var papeisValidos = map[Papel]struct{}{
	PapelAuditor: {},
	PapelManager: {},
	PapelAdmin:   {},
}

// NormalizePapel padroniza a grafia do papel informado, caindo em Auditor
// quando vazio.
func NormalizePapel(raw string) Papel {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PapelAuditor
	}
	for p := range papeisValidos {
		if strings.EqualFold(string(p), raw) {
			return p
		}
	}
	return Papel(raw)
}

// Valido informa se o papel pertence à enumeração.
func (p Papel) Valido() bool {
	_, ok := papeisValidos[p]
	return ok
}

// Papeis devolve os papéis aceitos, para telas de cadastro.
func Papeis() []Papel {
	return []Papel{PapelAuditor, PapelManager, PapelAdmin}
}
