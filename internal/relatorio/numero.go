package relatorio

import (
	"fmt"
	"strconv"
	"strings"
)

// formatNumero monta o número de relatório no formato ANO.SEQ (sequência com
// três dígitos).
func formatNumero(ano, seq int) string {
	return fmt.Sprintf("%d.%03d", ano, seq)
}

// proximoNumero calcula o número seguinte da sequência anual. Um ultimo vazio
// (nenhum caso no ano) inicia a sequência em 001; o número é imutável depois
// de atribuído, então só a parte final cresce.
func proximoNumero(ultimo string, ano int) (string, error) {
	if strings.TrimSpace(ultimo) == "" {
		return formatNumero(ano, 1), nil
	}

	prefixo, sufixo, ok := strings.Cut(ultimo, ".")
	if !ok {
		return "", fmt.Errorf("número de relatório malformado: %q", ultimo)
	}
	if prefixo != strconv.Itoa(ano) {
		return "", fmt.Errorf("número %q não pertence ao ano %d", ultimo, ano)
	}

	seq, err := strconv.Atoi(sufixo)
	if err != nil || seq < 0 {
		return "", fmt.Errorf("número de relatório malformado: %q", ultimo)
	}

	return formatNumero(ano, seq+1), nil
}
