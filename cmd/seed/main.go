package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaograos/auditoria/internal/db"
	"github.com/gestaograos/auditoria/internal/relatorio"
	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/service"
	"github.com/gestaograos/auditoria/internal/util"
)

// Aplica o schema e cadastra o administrador inicial. Com -exemplo também
// cria um caso demonstrativo com uma atividade.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	codigo := flag.String("codigo", "", "código do administrador inicial")
	nome := flag.String("nome", "", "nome completo do administrador")
	senha := flag.String("senha", "", "senha do administrador")
	exemplo := flag.Bool("exemplo", false, "cria um caso de exemplo")
	flag.Parse()

	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("falha ao aplicar schema")
	}
	log.Info().Msg("schema aplicado")

	if *codigo == "" || *nome == "" || *senha == "" {
		log.Info().Msg("sem -codigo/-nome/-senha, nenhum usuário criado")
		return
	}

	queries := repo.New(pool)
	usuarios := service.NewUsuarioService(queries)

	// O seed roda fora de uma sessão; usa uma identidade administrativa
	// sintética para passar pela regra de autorização.
	bootstrap := repo.Identidade{ID: 0, Codigo: "seed", Nome: "seed", Papel: repo.PapelAdmin}

	admin, err := usuarios.Create(ctx, bootstrap, service.CreateUsuarioInput{
		Codigo:       *codigo,
		NomeCompleto: *nome,
		Senha:        *senha,
		Papel:        string(repo.PapelAdmin),
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			log.Info().Str("codigo", *codigo).Msg("administrador já existe")
		} else {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	} else {
		log.Info().Str("codigo", admin.Codigo).Str("username", admin.Username).Msg("administrador criado")
	}

	if !*exemplo {
		return
	}

	relatorios := relatorio.NewService(relatorio.NewRepository(pool), nil)

	caso, err := relatorios.NovoCaso(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao criar caso de exemplo")
	}

	ator := repo.Identidade{ID: admin.ID, Codigo: admin.Codigo, Nome: admin.NomeCompleto, Papel: admin.Papel}
	_, err = relatorios.CriarAtividade(ctx, caso.ID, ator, relatorio.AtividadeInput{
		Descricao:          "Coleta de amostras para classificação",
		TestesRealizados:   "Verificação do processo de coleta de amostras de 12 veículos.",
		ExtensaoExames:     "12 veículos",
		CriterioAmostragem: "Descargas analisadas no sistema de câmeras da unidade",
		PeriodoInicio:      util.Today().AddDate(0, 0, -2).Format(util.DateLayout),
		PeriodoFim:         util.Today().Format(util.DateLayout),
		ObservacaoResumo:   "Sem irregularidades.",
		Situacao:           "FINALIZADO",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao criar atividade de exemplo")
	}

	log.Info().Str("numero", caso.NumeroRelatorio).Msg("caso de exemplo criado")
}
