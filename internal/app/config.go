package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/imdario/mergo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
)

// EnvPrefix — префикс переменных окружения сервиса.
const EnvPrefix = "COSTUMESHOP"

// StorageDriver выбирает реализацию хранилища таблиц.
type StorageDriver string

const (
	StorageDriverCSV      StorageDriver = "csv"
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	GRPCAddr    string `mapstructure:"GRPC_ADDR"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	PublicURL   string `mapstructure:"PUBLIC_URL"`

	StorageDriver       StorageDriver `mapstructure:"STORAGE_DRIVER"`
	DataDir             string        `mapstructure:"DATA_DIR"`
	PostgresDSN         string        `mapstructure:"POSTGRES_DSN"`
	PostgresAutoMigrate bool          `mapstructure:"POSTGRES_AUTO_MIGRATE"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`

	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPM int      `mapstructure:"RATE_LIMIT_RPM"`

	IDStrategy      string `mapstructure:"ID_STRATEGY"`
	SerializeWrites bool   `mapstructure:"SERIALIZE_WRITES"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

// DefaultConfig возвращает настройки для локального запуска над каталогом dane/.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":3000",
		GRPCAddr:            "127.0.0.1:50051",
		MetricsAddr:         ":9090",
		PublicURL:           "http://localhost:3000",
		StorageDriver:       StorageDriverCSV,
		DataDir:             "dane",
		PostgresAutoMigrate: true,
		KafkaTopic:          "costumeshop.record.events",
		IDStrategy:          "timestamp",
		LogLevel:            "info",
	}
}

// LoadConfig читает .env-файлы (уже заданные переменные не перезаписываются),
// затем переменные COSTUMESHOP_*. Без аргументов пробует ./.env.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := gotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("HTTP_ADDR", defaults.HTTPAddr)
	v.SetDefault("GRPC_ADDR", defaults.GRPCAddr)
	v.SetDefault("METRICS_ADDR", defaults.MetricsAddr)
	v.SetDefault("PUBLIC_URL", defaults.PublicURL)
	v.SetDefault("STORAGE_DRIVER", string(defaults.StorageDriver))
	v.SetDefault("DATA_DIR", defaults.DataDir)
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("POSTGRES_AUTO_MIGRATE", defaults.PostgresAutoMigrate)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", defaults.KafkaTopic)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_RPM", 0)
	v.SetDefault("ID_STRATEGY", defaults.IDStrategy)
	v.SetDefault("SERIALIZE_WRITES", false)
	v.SetDefault("LOG_LEVEL", defaults.LogLevel)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverCSV:
		if strings.TrimSpace(c.DataDir) == "" {
			errs = append(errs, errors.New("data dir is required for csv storage"))
		}
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if _, err := catalog.IdentityByName(c.IDStrategy); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimitRPM < 0 {
		errs = append(errs, fmt.Errorf("rate limit must be >= 0, got %d", c.RateLimitRPM))
	}
	if _, err := log.ParseLevel(c.LogLevel); c.LogLevel != "" && err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withDefaults дополняет незаданные поля значениями DefaultConfig.
// Флаги переносятся как есть: false для них не означает «не задано».
func (c Config) withDefaults() (Config, error) {
	out := c
	if err := mergo.Merge(&out, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("merge default config: %w", err)
	}
	out.PostgresAutoMigrate = c.PostgresAutoMigrate
	out.SerializeWrites = c.SerializeWrites
	return out, nil
}

// splitList разбирает значения вида "a, b" в том числе пришедшие одной строкой.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
