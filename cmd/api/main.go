package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaograos/auditoria/internal/auth"
	"github.com/gestaograos/auditoria/internal/config"
	"github.com/gestaograos/auditoria/internal/db"
	internalhttp "github.com/gestaograos/auditoria/internal/http"
	"github.com/gestaograos/auditoria/internal/relatorio"
	"github.com/gestaograos/auditoria/internal/repo"
	"github.com/gestaograos/auditoria/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	repository := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
	authService := service.NewAuthService(repository, redisClient, jwtManager, cfg.SessionTTL)
	usuarioService := service.NewUsuarioService(repository)

	relatorioRepo := relatorio.NewRepository(pool)
	relatorioService := relatorio.NewService(relatorioRepo, redisClient)
	relatorioHandler := relatorio.NewHandler(relatorioService)

	handler, err := internalhttp.NewRouter(cfg, authService, usuarioService, relatorioHandler)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
