package relatorio

import "github.com/gestaograos/auditoria/internal/repo"

// Catálogos dos formulários de atividade. Vêm da operação do terminal de
// grãos e alimentam os dropdowns do front.
var (
	ListaAtividades = []string{
		"Coleta de amostras para classificação",
		"Preenchimento dos registros de portaria",
		"Variação nas taras de caminhões",
		"Modificação no tíquete de pesagem",
		"Controle de utilização dos formulários da moega",
		"Serviços de pesagem para terceiros",
	}

	ListaSituacao = []string{"ABERTO", "FINALIZADO", "AGUARD. JUSTIF.", "PENDENTE"}
)

// Catalogo agrega as opções de formulário expostas em /opcoes.
type Catalogo struct {
	Atividades []string     `json:"atividades"`
	Situacoes  []string     `json:"situacoes"`
	Papeis     []repo.Papel `json:"papeis"`
}

// NewCatalogo monta o catálogo corrente.
func NewCatalogo() Catalogo {
	return Catalogo{
		Atividades: ListaAtividades,
		Situacoes:  ListaSituacao,
		Papeis:     repo.Papeis(),
	}
}
