package relatorio

import "testing"

func TestProximoNumero(t *testing.T) {
	tests := []struct {
		name   string
		ultimo string
		ano    int
		want   string
		err    bool
	}{
		{"primeiro do ano", "", 2025, "2025.001", false},
		{"incrementa", "2025.001", 2025, "2025.002", false},
		{"zero-padding preservado", "2025.009", 2025, "2025.010", false},
		{"acima de cem", "2025.099", 2025, "2025.100", false},
		{"sem separador", "2025001", 2025, "", true},
		{"sufixo não numérico", "2025.abc", 2025, "", true},
		{"ano divergente", "2024.050", 2025, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := proximoNumero(tc.ultimo, tc.ano)
			if tc.err {
				if err == nil {
					t.Fatalf("esperava erro para %q, obteve %q", tc.ultimo, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("proximoNumero(%q): %v", tc.ultimo, err)
			}
			if got != tc.want {
				t.Fatalf("proximoNumero(%q) = %q, esperava %q", tc.ultimo, got, tc.want)
			}
		})
	}
}

func TestNumeroReiniciaPorAno(t *testing.T) {
	// A consulta filtra pelo prefixo do ano corrente; um ano novo não tem
	// registros e a sequência volta para 001 independente do máximo anterior.
	got, err := proximoNumero("", 2026)
	if err != nil {
		t.Fatalf("proximoNumero: %v", err)
	}
	if got != "2026.001" {
		t.Fatalf("sequência do ano novo = %q, esperava 2026.001", got)
	}
}
