package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/phenrril/printquote/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultPort     = "8080"
	defaultQuoteTTL = 72 * time.Hour
)

type Config struct {
	Port     string
	DBDriver string
	DSN      string
	QuoteTTL time.Duration
	LogLevel zerolog.Level
	AppEnv   string
	Analyzer domain.ConfigPatch
	RandSeed *uint64
	// GeometryCacheSize caps cached model geometries; 0 keeps the default.
	GeometryCacheSize int
}

// Load reads .env (if present) and the process environment. Malformed numeric values are
// reported instead of silently ignored.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:     envOr("PORT", defaultPort),
		DBDriver: strings.ToLower(envOr("DB_DRIVER", DriverPostgres)),
		DSN:      dsn(),
		QuoteTTL: defaultQuoteTTL,
		LogLevel: zerolog.InfoLevel,
		AppEnv:   strings.ToLower(os.Getenv("APP_ENV")),
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverMemory {
		return Config{}, fmt.Errorf("DB_DRIVER %q no soportado", cfg.DBDriver)
	}

	if v := os.Getenv("QUOTE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("QUOTE_TTL inválido: %q", v)
		}
		cfg.QuoteTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL inválido: %w", err)
		}
		cfg.LogLevel = lvl
	}

	if v := os.Getenv("ANALYZER_MACHINE_HOURLY_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ANALYZER_MACHINE_HOURLY_RATE inválido: %q", v)
		}
		cfg.Analyzer.MachineHourlyRate = &f
	}
	if v := os.Getenv("ANALYZER_DEFAULT_INFILL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("ANALYZER_DEFAULT_INFILL inválido: %q", v)
		}
		cfg.Analyzer.DefaultInfill = &n
	}
	if v := os.Getenv("GEOMETRY_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("GEOMETRY_CACHE_SIZE inválido: %q", v)
		}
		cfg.GeometryCacheSize = n
	}
	if v := os.Getenv("ANALYZER_SEED"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ANALYZER_SEED inválido: %q", v)
		}
		cfg.RandSeed = &s
	}
	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "development" || c.AppEnv == "dev"
}

func dsn() string {
	if v := strings.TrimSpace(os.Getenv("DB_DSN")); v != "" {
		return v
	}
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := firstEnv("postgres", "DB_USER", "POSTGRES_USER")
	pass := firstEnv("postgres", "DB_PASSWORD", "POSTGRES_PASSWORD")
	name := firstEnv("printquote", "DB_NAME", "POSTGRES_DB")
	ssl := envOr("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}
