// Package config arma la configuración del proceso desde variables de entorno
// (con un .env opcional).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	DBDSN       string `env:"DB_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/economy.db"`

	// Sin JWT_SECRET el servicio arranca en modo dev (X-Debug-User-ID).
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminEmails []string      `env:"ADMIN_EMAILS" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"pet-adoption-economy"`

	RateLimitPerMinute int  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	AuditQueueSize     int  `env:"AUDIT_QUEUE_SIZE" envDefault:"256"`
	CommitRetries      int  `env:"COMMIT_RETRIES" envDefault:"3"`
	SeedPets           bool `env:"SEED_PETS" envDefault:"false"`
}

// ParseEnv carga la configuración de variables de entorno.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load lee los dotenvFiles que existan (sin pisar variables ya definidas),
// parsea el entorno y valida.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		// un .env ausente no es error
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverFile:
		if strings.TrimSpace(c.DataDir) == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the file store"))
		}
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			errs = append(errs, errors.New("DB_DSN is required for the postgres store"))
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 bytes"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.AuditQueueSize <= 0 {
		errs = append(errs, errors.New("AUDIT_QUEUE_SIZE must be positive"))
	}
	if c.CommitRetries <= 0 {
		errs = append(errs, errors.New("COMMIT_RETRIES must be positive"))
	}
	return errors.Join(errs...)
}

// Addr es la dirección de escucha HTTP.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
