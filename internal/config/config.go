package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	AccessTTL       time.Duration
	SessionTTL      time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitLogin  RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTTL = accessTTL

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = sessionTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitLogin = RateLimitConfig{RequestsPerSecond: 1, Burst: 5}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
