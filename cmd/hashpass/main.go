package main

import (
	"fmt"
	"os"

	"github.com/gestaograos/auditoria/internal/auth"
)

// Gera um hash Argon2id para inserir senhas manualmente no banco.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
